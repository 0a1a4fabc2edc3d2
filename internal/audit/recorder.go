package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/models"
)

// Recorder builds and persists log entries. It runs after the primary event
// write and outside any transaction: a crash between the two writes leaves the
// event mutated but unlogged. Known gap, accepted for this audit trail.
type Recorder struct {
	repo   *Repository
	logger *zap.Logger
}

// NewRecorder creates a log recorder.
func NewRecorder(repo *Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// RecordEvent appends a log entry for an event mutation. The snapshot is the
// post-mutation event for create/update and the pre-mutation event for delete.
// For update, oldEvent must be the pre-mutation version; the entry carries the
// changeset, which may be empty (a no-op update is still recorded).
func (r *Recorder) RecordEvent(ctx context.Context, action models.LogAction, snapshot, oldEvent *models.Event, performedBy *models.Actor) (*models.Log, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	entry := &models.Log{
		ID:          uuid.NewString(),
		Action:      action,
		Timestamp:   time.Now().UTC(),
		Event:       raw,
		PerformedBy: performedBy,
	}
	if action == models.ActionUpdate && oldEvent != nil {
		entry.Changes = Diff(oldEvent, snapshot)
	}
	if err := r.repo.Insert(ctx, entry); err != nil {
		r.logger.Error("append audit log",
			zap.String("action", string(action)),
			zap.String("event_id", snapshot.ID),
			zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// SessionVisit is the event payload of a session log entry.
type SessionVisit struct {
	Type      string `json:"type"`
	UserAgent string `json:"userAgent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// RecordSession appends a page-visit session entry.
func (r *Recorder) RecordSession(ctx context.Context, userAgent, ip string) error {
	raw, err := json.Marshal(SessionVisit{Type: "page_visit", UserAgent: userAgent, IP: ip})
	if err != nil {
		return err
	}
	entry := &models.Log{
		ID:        uuid.NewString(),
		Action:    models.ActionSession,
		Timestamp: time.Now().UTC(),
		Event:     raw,
	}
	return r.repo.Insert(ctx, entry)
}
