package models

import "time"

// Category classifies an event on the calendar.
type Category string

const (
	CategoryPodcast   Category = "podcast"
	CategoryMinecraft Category = "minecraft"
	CategoryDiscord   Category = "discord"
)

// ValidCategory reports whether c is one of the known event categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryPodcast, CategoryMinecraft, CategoryDiscord:
		return true
	}
	return false
}

// Organizer is a lightweight attribution record attached to an event. Role is
// a free-text label ("Líder", "Ayudante"), not a system Role, and does not
// authenticate anything.
type Organizer struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Event is a calendar entry. It has no single owner; any staff member may
// mutate it, and every mutation produces a Log entry.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Date        *time.Time  `json:"date,omitempty"`
	Time        string      `json:"time,omitempty"` // time-of-day display string, HH:mm
	Category    Category    `json:"category"`
	Organizers  []Organizer `json:"organizers"`
	CreatedAt   time.Time   `json:"createdAt"`
}
