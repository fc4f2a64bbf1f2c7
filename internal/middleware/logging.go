package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request with method, path, status, user and
// duration. Client and server errors log at warn and error respectively.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		status := ctx.Writer.Status()
		attrs := []any{
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"status", status,
			"user_id", UserID(ctx),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			slog.Error("request failed", attrs...)
		case status >= 400:
			slog.Warn("request rejected", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
	}
}
