package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/mango-army/events-backend/pkg/response"
)

// Handler handles audit log HTTP endpoints.
type Handler struct {
	repo     *Repository
	recorder *Recorder
}

// NewHandler creates an audit log handler.
func NewHandler(repo *Repository, recorder *Recorder) *Handler {
	return &Handler{repo: repo, recorder: recorder}
}

// List handles GET /api/logs. Returns all entries, newest first.
func (h *Handler) List(c *gin.Context) {
	logs, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list logs")
		return
	}
	response.OK(c, logs)
}

// CreateSession handles POST /api/logs/session, recording a page visit.
func (h *Handler) CreateSession(c *gin.Context) {
	if err := h.recorder.RecordSession(c.Request.Context(), c.Request.UserAgent(), c.ClientIP()); err != nil {
		response.Internal(c, "failed to log session")
		return
	}
	response.OK(c, gin.H{"message": "session logged"})
}
