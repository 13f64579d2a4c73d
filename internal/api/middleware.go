package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// recovery turns panics into a 500 with the standard error envelope.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic in handler", "path", c.Request.URL.Path, "panic", recovered)
		if msg, ok := recovered.(string); ok {
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", msg)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	})
}

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
