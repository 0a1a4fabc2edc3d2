// Package users is the admin panel backend: listing staff, reassigning role
// sets, and removing accounts, gated by the role model in internal/roles.
package users

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/auth"
	"github.com/mango-army/events-backend/internal/models"
	"github.com/mango-army/events-backend/internal/roles"
	"github.com/mango-army/events-backend/pkg/response"
)

// UpdateRolesRequest is the body for PUT /api/auth/users/:id/roles.
type UpdateRolesRequest struct {
	AdminDiscordID string   `json:"adminDiscordId" binding:"required"`
	Roles          []string `json:"roles"`
}

// ActorRequest carries the acting admin's Discord ID for operations whose
// payload is otherwise empty.
type ActorRequest struct {
	AdminDiscordID string `json:"adminDiscordId" binding:"required"`
}

// Handler handles user management HTTP endpoints.
type Handler struct {
	repo         *auth.Repository
	bootstrapIDs map[string]bool
	logger       *zap.Logger
}

// NewHandler creates a user management handler. bootstrapIDs are Discord IDs
// that hold owner powers before any user record exists.
func NewHandler(repo *auth.Repository, bootstrapIDs []string, logger *zap.Logger) *Handler {
	ids := make(map[string]bool, len(bootstrapIDs))
	for _, id := range bootstrapIDs {
		ids[id] = true
	}
	return &Handler{repo: repo, bootstrapIDs: ids, logger: logger}
}

// resolveActor loads the acting admin's effective role set. Bootstrap admins
// count as owners even without a user record. known is false when the actor is
// neither a stored user nor a bootstrap admin.
func (h *Handler) resolveActor(ctx context.Context, discordID string) (actorRoles []models.Role, known bool, err error) {
	user, err := h.repo.GetByDiscordID(ctx, discordID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	if user != nil {
		actorRoles = roles.EffectiveRoles(user)
		known = true
	}
	if h.bootstrapIDs[discordID] {
		known = true
		if !roles.IsOwner(actorRoles) {
			actorRoles = append([]models.Role{models.RoleOwner}, actorRoles...)
		}
	}
	return actorRoles, known, nil
}

// List handles GET /api/auth/users. Role sets are normalized before they leave
// the API so clients never see legacy role names.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	out := make([]models.UserPublic, 0, len(list))
	for i := range list {
		u := list[i]
		roleSet := roles.EffectiveRoles(&u)
		u.Roles = roleSet
		if len(roleSet) > 0 {
			u.Role = roleSet[0]
		}
		out = append(out, u.ToPublic())
	}
	response.OK(c, out)
}

// UpdateRoles handles PUT /api/auth/users/:id/roles.
func (h *Handler) UpdateRoles(c *gin.Context) {
	var req UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	actorRoles, known, err := h.resolveActor(ctx, req.AdminDiscordID)
	if err != nil {
		response.Internal(c, "failed to resolve admin")
		return
	}
	if !known {
		response.Forbidden(c, "admin permissions required")
		return
	}

	target, err := h.repo.GetByDiscordID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}

	if !roles.CanEdit(actorRoles, roles.EffectiveRoles(target)) {
		response.Forbidden(c, "only owners can modify other owners")
		return
	}

	proposed, err := roles.Normalize(req.Roles)
	if err != nil {
		response.BadRequest(c, "must have at least one valid role")
		return
	}
	if err := roles.CanAssign(actorRoles, proposed); err != nil {
		response.Forbidden(c, "only owners can assign the owner or developer role")
		return
	}

	if err := h.repo.UpdateRoles(ctx, target.DiscordID, proposed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to update roles")
		return
	}

	h.logger.Info("roles updated",
		zap.String("target", target.DiscordID),
		zap.String("admin", req.AdminDiscordID))
	response.OK(c, gin.H{"message": "roles updated", "roles": proposed})
}

// Delete handles DELETE /api/auth/users/:id.
func (h *Handler) Delete(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	actorRoles, known, err := h.resolveActor(ctx, req.AdminDiscordID)
	if err != nil {
		response.Internal(c, "failed to resolve admin")
		return
	}
	if !known {
		response.Forbidden(c, "admin permissions required")
		return
	}

	target, err := h.repo.GetByDiscordID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}

	if !roles.CanEdit(actorRoles, roles.EffectiveRoles(target)) {
		response.Forbidden(c, "only owners can delete other owners")
		return
	}

	if err := h.repo.Delete(ctx, target.DiscordID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to delete user")
		return
	}

	h.logger.Info("user deleted",
		zap.String("target", target.DiscordID),
		zap.String("admin", req.AdminDiscordID))
	response.OK(c, gin.H{"message": "user deleted"})
}

// CheckAdmin handles GET /api/auth/check-admin/:id, the client's bootstrap
// probe before any session exists.
func (h *Handler) CheckAdmin(c *gin.Context) {
	id := c.Param("id")
	user, err := h.repo.GetByDiscordID(c.Request.Context(), id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		response.Internal(c, "failed to load user")
		return
	}
	if user != nil {
		roleSet := roles.EffectiveRoles(user)
		isAdmin := roles.IsOwner(roleSet)
		for _, r := range roleSet {
			if r == models.RoleAdmin {
				isAdmin = true
			}
		}
		response.OK(c, gin.H{"isAdmin": isAdmin, "isUser": true})
		return
	}
	response.OK(c, gin.H{"isAdmin": h.bootstrapIDs[id], "isUser": false})
}
