package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/pkg/response"
)

// publicGetPaths are routes anonymous visitors may GET without an API key:
// the calendar, the health check.
var publicGetPaths = []string{
	"/api/events",
	"/api/ping",
}

// APIKey returns a middleware that gates non-public routes behind an
// x-api-key header. When no key is configured all requests are allowed, with a
// startup warning, so local development works out of the box.
func APIKey(key string, logger *zap.Logger) gin.HandlerFunc {
	if key == "" {
		logger.Warn("API_KEY not configured - all requests allowed")
	}
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.Request.Method == "GET" {
			for _, p := range publicGetPaths {
				if strings.HasPrefix(c.Request.URL.Path, p) {
					c.Next()
					return
				}
			}
		}
		if c.GetHeader("x-api-key") != key {
			response.Unauthorized(c, "invalid or missing API key")
			c.Abort()
			return
		}
		c.Next()
	}
}
