package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"recipebook/internal/api"
	"recipebook/internal/platform/database"
	"recipebook/internal/recipe"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Apply pending migrations, then serve the recipe API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, db, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := database.Migrate(ctx, db); err != nil {
				return err
			}

			if logger.Enabled(ctx, slog.LevelDebug) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			service := recipe.NewService(recipe.NewSQLStore(db), logger)
			handler := api.NewHandler(service, cfg.Server.RequestTimeout, logger)
			router := api.NewRouter(handler, api.RouterConfig{
				AllowOrigins: cfg.Server.CORSAllowOrigins,
				Logger:       logger,
			})

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.InfoContext(gctx, "starting server", "addr", srv.Addr, "driver", cfg.Database.Driver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to serve: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("failed to shut down server: %w", err)
				}
				return nil
			})

			return g.Wait()
		},
	}
}
