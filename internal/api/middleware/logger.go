package middleware

import (
	"time"

	"ffbridge/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one entry per request through the application logger.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log := logger.With(
			"request_id", c.GetString(RequestIDKey),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("%s %s %d %s", c.Request.Method, path, status, c.Errors.String())
		case status >= 400:
			log.Warn("%s %s %d", c.Request.Method, path, status)
		default:
			log.Info("%s %s %d", c.Request.Method, path, status)
		}
	}
}
