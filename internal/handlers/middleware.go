package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request. HTMX polling of a loading issue
// is logged at debug level to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"htmx", isHTMX(c),
		}
		if c.Request.Method == "GET" && c.FullPath() == "/issue" {
			slog.Debug("HTTP request", attrs...)
			return
		}
		slog.Info("HTTP request", attrs...)
	}
}
