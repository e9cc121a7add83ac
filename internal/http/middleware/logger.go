package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/common/logger"
)

// Logger logs one line per request and tags the request context with the
// session being addressed, so logs from the core carry session_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		if raw := c.Param("id"); raw != "" {
			if sessionID, err := id.Parse(raw); err == nil {
				ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{SessionID: &sessionID})
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
