package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/pkg/logger"
)

// Logger writes a structured access log for each request. Server errors are
// logged at warn level, health probes at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if subject := c.GetString(CtxSubjectKey); subject != "" {
			fields = append(fields, zap.String("subject", subject))
		}

		log := logger.WithModule("http")
		switch {
		case status >= 500:
			log.Warn("request", fields...)
		case c.FullPath() == "/health":
			log.Debug("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
