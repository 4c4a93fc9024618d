package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultContentSecurityPolicy restricts resources to same origin.
	DefaultContentSecurityPolicy = "default-src 'self'; frame-ancestors 'none'"

	hstsValue = "max-age=31536000; includeSubDomains"
)

// SecurityHeaders applies the response headers shared by the API and the
// public endpoints. HSTS is only sent on requests that arrived over HTTPS,
// directly or through a proxy setting X-Forwarded-Proto.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", DefaultContentSecurityPolicy)
		h.Set("Referrer-Policy", "no-referrer")
		if isHTTPS(c) {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		// Settings responses carry SMTP configuration.
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}

func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
