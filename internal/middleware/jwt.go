package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mango-army/events-backend/internal/auth"
	"github.com/mango-army/events-backend/pkg/response"
)

const (
	// ContextDiscordID is the key for the staff member's Discord ID in gin context.
	ContextDiscordID = "discord_id"
	// ContextUsername is the key for the staff member's username in gin context.
	ContextUsername = "username"
	// ContextRoles is the key for the staff member's roles in gin context.
	ContextRoles = "roles"
)

// JWT returns a middleware that validates JWT and sets staff claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextDiscordID, claims.DiscordID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}
