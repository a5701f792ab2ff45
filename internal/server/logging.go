package server

import (
	"time"

	"classflow/internal/logger"

	"github.com/gin-gonic/gin"
)

// Probe endpoints hit every few seconds; logging them drowns the real traffic.
var unloggedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLoggingMiddleware writes one line per request. Server-side failures
// go to the error log so they surface without grepping access logs.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if unloggedPaths[path] {
			return
		}

		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if status >= 500 {
			logger.Error("HTTP request failed", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
