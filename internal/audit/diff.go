// Package audit records every event mutation to the append-only log: full
// snapshots for create/delete, a field-level changeset for update.
package audit

import (
	"time"

	"github.com/mango-army/events-backend/internal/models"
)

// Diff computes the sparse changeset between two versions of an event.
// Unchanged fields are omitted entirely. The result is never nil: a no-op
// update yields an empty changeset, which is still logged.
func Diff(oldEvent, newEvent *models.Event) *models.Changes {
	c := &models.Changes{}

	if oldEvent.Title != newEvent.Title {
		c.Title = &models.FieldChange{Old: oldEvent.Title, New: newEvent.Title}
	}
	if oldEvent.Description != newEvent.Description {
		c.Description = &models.FieldChange{Old: oldEvent.Description, New: newEvent.Description}
	}
	if oldEvent.Time != newEvent.Time {
		c.Time = &models.FieldChange{Old: oldEvent.Time, New: newEvent.Time}
	}
	if oldEvent.Category != newEvent.Category {
		c.Category = &models.FieldChange{Old: string(oldEvent.Category), New: string(newEvent.Category)}
	}
	// Dates compare by normalized serialized value, not by instance.
	oldDate, newDate := normalizeDate(oldEvent.Date), normalizeDate(newEvent.Date)
	if oldDate != newDate {
		c.Date = &models.FieldChange{Old: oldDate, New: newDate}
	}

	diffOrganizers(c, oldEvent.Organizers, newEvent.Organizers)
	return c
}

func normalizeDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// diffOrganizers fills the organizer add/remove/update lists. Order within
// each list follows the order of occurrence in its source list: additions and
// in-place updates follow the new list, removals the old one.
func diffOrganizers(c *models.Changes, oldList, newList []models.Organizer) {
	oldByID := make(map[string]models.Organizer, len(oldList))
	for _, o := range oldList {
		oldByID[o.ID] = o
	}
	newIDs := make(map[string]bool, len(newList))
	for _, o := range newList {
		newIDs[o.ID] = true
	}

	for _, o := range newList {
		prev, existed := oldByID[o.ID]
		if !existed {
			c.OrganizersAdded = append(c.OrganizersAdded, o)
			continue
		}
		if prev.Role != o.Role {
			c.OrganizersUpdated = append(c.OrganizersUpdated, models.OrganizerUpdate{
				ID:        o.ID,
				Username:  o.Username,
				AvatarURL: o.AvatarURL,
				OldRole:   prev.Role,
				NewRole:   o.Role,
			})
		}
	}
	for _, o := range oldList {
		if !newIDs[o.ID] {
			c.OrganizersRemoved = append(c.OrganizersRemoved, o)
		}
	}
}
