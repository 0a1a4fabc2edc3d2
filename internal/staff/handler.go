package staff

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/discord"
	"github.com/mango-army/events-backend/internal/models"
	"github.com/mango-army/events-backend/pkg/response"
	"github.com/mango-army/events-backend/pkg/utils"
)

const generatedPasswordLength = 8

// DiscordLookup resolves a Discord ID to a public profile. Lookups are
// best-effort; request submission succeeds without one.
type DiscordLookup interface {
	GetUser(ctx context.Context, id string) (*discord.User, error)
}

// RequestStore is the request persistence surface the handler needs.
type RequestStore interface {
	Create(ctx context.Context, req *models.StaffRequest) error
	GetByID(ctx context.Context, id string) (*models.StaffRequest, error)
	ListPending(ctx context.Context) ([]models.StaffRequest, error)
	HasPending(ctx context.Context, discordID string) (bool, error)
	Decide(ctx context.Context, id string, status models.RequestStatus) (*models.StaffRequest, error)
	Reopen(ctx context.Context, id string) error
}

// UserStore resolves and creates staff accounts.
type UserStore interface {
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// SubmitRequest is the body for POST /api/auth/request-staff.
type SubmitRequest struct {
	DiscordID string `json:"discordId" binding:"required"`
	StaffType string `json:"staffType" binding:"required"`
}

// DecideRequest carries the acting admin's Discord ID on approve/reject.
type DecideRequest struct {
	AdminDiscordID string `json:"adminDiscordId" binding:"required"`
}

// ApprovedUser is returned once on approval; Password is the generated
// one-time credential and is never retrievable again.
type ApprovedUser struct {
	Username string        `json:"username"`
	Password string        `json:"password"`
	Roles    []models.Role `json:"roles"`
}

// Handler handles staff request HTTP endpoints.
type Handler struct {
	repo         RequestStore
	users        UserStore
	lookup       DiscordLookup
	bootstrapIDs map[string]bool
	logger       *zap.Logger
}

// NewHandler creates a staff request handler.
func NewHandler(repo RequestStore, users UserStore, lookup DiscordLookup, bootstrapIDs []string, logger *zap.Logger) *Handler {
	ids := make(map[string]bool, len(bootstrapIDs))
	for _, id := range bootstrapIDs {
		ids[id] = true
	}
	return &Handler{repo: repo, users: users, lookup: lookup, bootstrapIDs: ids, logger: logger}
}

// isKnownAdmin reports whether the Discord ID belongs to a stored staff member
// or the bootstrap admin list.
func (h *Handler) isKnownAdmin(ctx context.Context, discordID string) (bool, error) {
	if h.bootstrapIDs[discordID] {
		return true, nil
	}
	_, err := h.users.GetByDiscordID(ctx, discordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Submit handles POST /api/auth/request-staff.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "discord ID and staff type are required")
		return
	}
	staffType := models.StaffType(req.StaffType)
	if _, ok := staffType.Role(); !ok {
		response.BadRequest(c, "must select a valid access type")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByDiscordID(ctx, req.DiscordID); err == nil {
		response.BadRequest(c, "you are already part of the staff")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		response.Internal(c, "failed to check existing user")
		return
	}

	pending, err := h.repo.HasPending(ctx, req.DiscordID)
	if err != nil {
		response.Internal(c, "failed to check pending requests")
		return
	}
	if pending {
		response.BadRequest(c, "you already have a pending request")
		return
	}

	// Best-effort profile enrichment; the request goes through either way.
	username := "Usuario_" + lastN(req.DiscordID, 4)
	avatarURL := ""
	if h.lookup != nil {
		if profile, err := h.lookup.GetUser(ctx, req.DiscordID); err == nil {
			username = profile.Username
			avatarURL = profile.AvatarURL()
		} else if !errors.Is(err, discord.ErrNotConfigured) {
			h.logger.Warn("discord profile lookup failed",
				zap.String("discord_id", req.DiscordID), zap.Error(err))
		}
	}

	record := &models.StaffRequest{
		ID:        uuid.NewString(),
		DiscordID: req.DiscordID,
		Username:  username,
		AvatarURL: avatarURL,
		StaffType: staffType,
		Status:    models.StatusPending,
	}
	if err := h.repo.Create(ctx, record); err != nil {
		response.Internal(c, "failed to create request")
		return
	}
	response.Created(c, gin.H{"message": "request submitted"})
}

// ListPending handles GET /api/auth/requests.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.repo.ListPending(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /api/auth/approve/:id. The request is claimed before
// the user is created so two concurrent approvals cannot both mint accounts.
func (h *Handler) Approve(c *gin.Context) {
	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	admin, err := h.isKnownAdmin(ctx, body.AdminDiscordID)
	if err != nil {
		response.Internal(c, "failed to resolve admin")
		return
	}
	if !admin {
		response.Forbidden(c, "admin permissions required")
		return
	}

	pending, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "request not found")
			return
		}
		response.Internal(c, "failed to load request")
		return
	}
	if _, err := h.users.GetByDiscordID(ctx, pending.DiscordID); err == nil {
		// Approved through another request in the meantime.
		response.Conflict(c, "user already exists")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		response.Internal(c, "failed to check existing user")
		return
	}

	req, err := h.repo.Decide(ctx, pending.ID, models.StatusApproved)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyDecided):
			response.Conflict(c, "request already decided")
		case errors.Is(err, pgx.ErrNoRows):
			response.NotFound(c, "request not found")
		default:
			response.Internal(c, "failed to approve request")
		}
		return
	}

	password, err := utils.GeneratePassword(generatedPasswordLength)
	if err != nil {
		response.Internal(c, "failed to generate password")
		return
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	role, ok := req.StaffType.Role()
	if !ok {
		role = models.RolePodcaster
	}
	user := &models.User{
		DiscordID: req.DiscordID,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Password:  hash,
		Role:      role,
		Roles:     []models.Role{role},
	}
	if err := h.users.Create(ctx, user); err != nil {
		// Claiming the request and minting the account are separate writes.
		// Reopen the claim so the approval can be retried instead of leaving an
		// approved request with no account behind it.
		if reopenErr := h.repo.Reopen(ctx, req.ID); reopenErr != nil {
			h.logger.Error("reopen request after failed user create",
				zap.String("request_id", req.ID), zap.Error(reopenErr))
		}
		h.logger.Error("create user for approved request",
			zap.String("request_id", req.ID), zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	h.logger.Info("staff request approved",
		zap.String("request_id", req.ID),
		zap.String("discord_id", req.DiscordID),
		zap.String("role", string(role)))
	response.OK(c, gin.H{
		"message": "user approved",
		"user":    ApprovedUser{Username: user.Username, Password: password, Roles: user.Roles},
	})
}

// Reject handles POST /api/auth/reject/:id.
func (h *Handler) Reject(c *gin.Context) {
	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	admin, err := h.isKnownAdmin(ctx, body.AdminDiscordID)
	if err != nil {
		response.Internal(c, "failed to resolve admin")
		return
	}
	if !admin {
		response.Forbidden(c, "admin permissions required")
		return
	}

	if _, err := h.repo.Decide(ctx, c.Param("id"), models.StatusRejected); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyDecided):
			response.Conflict(c, "request already decided")
		case errors.Is(err, pgx.ErrNoRows):
			response.NotFound(c, "request not found")
		default:
			response.Internal(c, "failed to reject request")
		}
		return
	}
	response.OK(c, gin.H{"message": "request rejected"})
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
