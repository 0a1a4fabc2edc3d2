package discord

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/pkg/response"
)

// Handler handles Discord lookup HTTP endpoints.
type Handler struct {
	client *Client
	logger *zap.Logger
}

// NewHandler creates a Discord lookup handler.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// GetUser handles GET /api/discord-user/:id, proxying a profile lookup.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.client.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			response.Internal(c, "discord bot token not configured")
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "discord user not found")
		case errors.Is(err, ErrUnauthorized):
			response.Unauthorized(c, "invalid bot token")
		default:
			h.logger.Error("discord lookup", zap.Error(err))
			response.Internal(c, "failed to reach discord")
		}
		return
	}
	response.OK(c, user)
}
