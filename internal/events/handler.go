// Package events implements calendar event CRUD. Every mutation appends an
// audit log entry and pushes a message on the realtime calendar feed.
package events

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/audit"
	"github.com/mango-army/events-backend/internal/models"
	"github.com/mango-army/events-backend/pkg/response"
)

// Broadcaster pushes a calendar change to connected viewers.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// EventRequest is the body for POST /api/events and PUT /api/events/:id.
// PerformedBy is the actor identity recorded on the log entry; it is taken as
// claimed, the transport layer having already authenticated the request.
type EventRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Date        *time.Time         `json:"date"`
	Time        string             `json:"time"`
	Category    models.Category    `json:"category" binding:"required"`
	Organizers  []models.Organizer `json:"organizers"`
	PerformedBy *models.Actor      `json:"performedBy"`
}

// DeleteRequest is the optional body for DELETE /api/events/:id.
type DeleteRequest struct {
	PerformedBy *models.Actor `json:"performedBy"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo     *Repository
	recorder *audit.Recorder
	feed     Broadcaster
	logger   *zap.Logger
}

// NewHandler creates an event handler. feed may be nil when no realtime feed
// is wired (tests).
func NewHandler(repo *Repository, recorder *audit.Recorder, feed Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, recorder: recorder, feed: feed, logger: logger}
}

// List handles GET /api/events, the public calendar.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/events.
func (h *Handler) Create(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidCategory(req.Category) {
		response.BadRequest(c, "invalid category")
		return
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Category:    req.Category,
		Organizers:  req.Organizers,
	}
	ctx := c.Request.Context()
	if err := h.repo.Create(ctx, event); err != nil {
		response.Internal(c, "failed to create event")
		return
	}

	// The event write and the log write are sequential, not atomic: a log
	// failure is reported but the event stays created.
	if _, err := h.recorder.RecordEvent(ctx, models.ActionCreate, event, nil, req.PerformedBy); err != nil {
		response.Internal(c, "event created but audit log failed")
		return
	}

	h.broadcast("event_created", event)
	response.Created(c, event)
}

// Update handles PUT /api/events/:id.
func (h *Handler) Update(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidCategory(req.Category) {
		response.BadRequest(c, "invalid category")
		return
	}

	ctx := c.Request.Context()
	oldEvent, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}

	updated := &models.Event{
		ID:          oldEvent.ID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Category:    req.Category,
		Organizers:  req.Organizers,
		CreatedAt:   oldEvent.CreatedAt,
	}
	if err := h.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to update event")
		return
	}

	// Recorded unconditionally, even when the changeset comes out empty.
	if _, err := h.recorder.RecordEvent(ctx, models.ActionUpdate, updated, oldEvent, req.PerformedBy); err != nil {
		response.Internal(c, "event updated but audit log failed")
		return
	}

	h.broadcast("event_updated", updated)
	response.OK(c, updated)
}

// Delete handles DELETE /api/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	_ = c.ShouldBindJSON(&req) // body optional

	ctx := c.Request.Context()
	event, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}

	if err := h.repo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}

	if _, err := h.recorder.RecordEvent(ctx, models.ActionDelete, event, nil, req.PerformedBy); err != nil {
		response.Internal(c, "event deleted but audit log failed")
		return
	}

	h.broadcast("event_deleted", gin.H{"id": event.ID})
	response.OK(c, gin.H{"message": "event deleted"})
}

func (h *Handler) broadcast(event string, payload interface{}) {
	if h.feed != nil {
		h.feed.Broadcast(event, payload)
	}
}
