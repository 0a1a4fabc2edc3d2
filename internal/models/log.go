package models

import (
	"encoding/json"
	"time"
)

// LogAction is the kind of audited action.
type LogAction string

const (
	ActionCreate  LogAction = "create"
	ActionUpdate  LogAction = "update"
	ActionDelete  LogAction = "delete"
	ActionSession LogAction = "session"
)

// Actor is the public identity recorded as performedBy on a log entry. It is
// copied verbatim from the caller; the transport layer authenticates the
// request, but the claimed identity is not re-verified against the session.
type Actor struct {
	DiscordID string `json:"discordId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// FieldChange is a before/after pair for one event field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// OrganizerUpdate records an in-place role-label edit on an organizer whose
// identity did not change.
type OrganizerUpdate struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	OldRole   string `json:"oldRole"`
	NewRole   string `json:"newRole"`
}

// Changes is the sparse changeset attached to an update log entry. A field
// absent from the changeset did not change; it was not "changed to empty".
type Changes struct {
	Title             *FieldChange      `json:"title,omitempty"`
	Description       *FieldChange      `json:"description,omitempty"`
	Time              *FieldChange      `json:"time,omitempty"`
	Category          *FieldChange      `json:"category,omitempty"`
	Date              *FieldChange      `json:"date,omitempty"`
	OrganizersAdded   []Organizer       `json:"organizersAdded,omitempty"`
	OrganizersRemoved []Organizer       `json:"organizersRemoved,omitempty"`
	OrganizersUpdated []OrganizerUpdate `json:"organizersUpdated,omitempty"`
}

// IsEmpty reports whether the changeset records no change at all. A no-op
// update still produces a log entry carrying an empty changeset.
func (c *Changes) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Time == nil &&
		c.Category == nil && c.Date == nil &&
		len(c.OrganizersAdded) == 0 && len(c.OrganizersRemoved) == 0 &&
		len(c.OrganizersUpdated) == 0
}

// Log is one append-only audit record. Event holds a snapshot of the affected
// event, or session metadata for action "session". Logs are never mutated or
// deleted after creation.
type Log struct {
	ID          string          `json:"id"`
	Action      LogAction       `json:"action"`
	Timestamp   time.Time       `json:"timestamp"`
	Event       json.RawMessage `json:"event"`
	PerformedBy *Actor          `json:"performedBy,omitempty"`
	Changes     *Changes        `json:"changes,omitempty"`
}
