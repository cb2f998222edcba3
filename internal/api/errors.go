package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recipebook/internal/recipe"
)

// Error codes written in ErrorResponse.Code.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id"`
	Timestamp time.Time         `json:"timestamp"`
}

// fail maps err to a status code and writes it as an ErrorResponse.
func (h *Handler) fail(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	var details map[string]string

	var rerr *recipe.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusRequestTimeout, ErrCodeTimeout, "request timed out"
	case errors.As(err, &rerr) && rerr.Kind == recipe.KindValidation:
		status, code, message = http.StatusBadRequest, ErrCodeInvalidRequest, rerr.Message
		details = rerr.Fields
	case errors.As(err, &rerr) && rerr.Kind == recipe.KindNotFound:
		status, code, message = http.StatusNotFound, ErrCodeNotFound, rerr.Message
	}

	if status >= http.StatusInternalServerError || status == http.StatusRequestTimeout {
		h.Logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: RequestID(c),
		Timestamp: time.Now().UTC(),
	})
}
