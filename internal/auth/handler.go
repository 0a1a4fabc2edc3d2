package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/models"
	"github.com/mango-army/events-backend/internal/roles"
	"github.com/mango-army/events-backend/pkg/response"
	"github.com/mango-army/events-backend/pkg/utils"
)

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	DiscordID string `json:"discordId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByDiscordID(c.Request.Context(), req.DiscordID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("load user", zap.Error(err))
		}
		response.Unauthorized(c, "incorrect ID or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "incorrect ID or password")
		return
	}

	roleSet := roles.EffectiveRoles(user)
	user.Roles = roleSet
	if len(roleSet) > 0 {
		user.Role = roleSet[0]
	}

	roleStrings := make([]string, len(roleSet))
	for i, r := range roleSet {
		roleStrings[i] = string(r)
	}
	token, err := h.jwt.Generate(user.DiscordID, user.Username, roleStrings)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
