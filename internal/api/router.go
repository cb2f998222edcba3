package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the options of NewRouter.
type RouterConfig struct {
	// AllowOrigins lists the origins allowed by CORS. Empty disables CORS handling.
	AllowOrigins []string
	Logger       *slog.Logger
}

// NewRouter builds the gin engine serving the API under /api/v1 plus /health and /metrics.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		MetricsMiddleware(),
		LoggingMiddleware(logger),
	)

	if len(cfg.AllowOrigins) > 0 {
		// Configure CORS middleware
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(r.Group("/api/v1"))

	return r
}
