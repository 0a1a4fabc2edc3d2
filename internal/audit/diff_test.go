package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mango-army/events-backend/internal/models"
)

func baseEvent() models.Event {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return models.Event{
		ID:       "1700000000000",
		Title:    "Podcast semanal",
		Time:     "12:00",
		Category: models.CategoryPodcast,
		Date:     &date,
		Organizers: []models.Organizer{
			{ID: "A", Username: "ana", Role: "Líder"},
		},
	}
}

func TestDiffOnlyTimeChanged(t *testing.T) {
	oldEvent := baseEvent()
	newEvent := baseEvent()
	newEvent.Time = "13:00"

	c := Diff(&oldEvent, &newEvent)
	require.NotNil(t, c.Time)
	assert.Equal(t, "12:00", c.Time.Old)
	assert.Equal(t, "13:00", c.Time.New)

	// No other keys in the changeset.
	assert.Nil(t, c.Title)
	assert.Nil(t, c.Description)
	assert.Nil(t, c.Category)
	assert.Nil(t, c.Date)
	assert.Empty(t, c.OrganizersAdded)
	assert.Empty(t, c.OrganizersRemoved)
	assert.Empty(t, c.OrganizersUpdated)
}

func TestDiffDateComparedByValue(t *testing.T) {
	oldEvent := baseEvent()
	newEvent := baseEvent()

	// Same instant, different instance and zone: no change.
	loc := time.FixedZone("UTC+2", 2*3600)
	same := oldEvent.Date.In(loc)
	newEvent.Date = &same
	assert.Nil(t, Diff(&oldEvent, &newEvent).Date)

	moved := oldEvent.Date.Add(24 * time.Hour)
	newEvent.Date = &moved
	c := Diff(&oldEvent, &newEvent)
	require.NotNil(t, c.Date)
	assert.Equal(t, "2026-03-14T00:00:00Z", c.Date.Old)
	assert.Equal(t, "2026-03-15T00:00:00Z", c.Date.New)
}

func TestDiffOrganizerAdded(t *testing.T) {
	oldEvent := baseEvent()
	newEvent := baseEvent()
	newEvent.Organizers = append(newEvent.Organizers, models.Organizer{ID: "B", Username: "bruno", Role: "Ayudante"})

	c := Diff(&oldEvent, &newEvent)
	require.Len(t, c.OrganizersAdded, 1)
	assert.Equal(t, "B", c.OrganizersAdded[0].ID)
	assert.Empty(t, c.OrganizersRemoved)

	// organizersRemoved must be absent from the serialized changeset, not empty.
	raw, err := json.Marshal(c)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Contains(t, keys, "organizersAdded")
	assert.NotContains(t, keys, "organizersRemoved")
}

func TestDiffOrganizerRemovedKeepsSourceOrder(t *testing.T) {
	oldEvent := baseEvent()
	oldEvent.Organizers = []models.Organizer{
		{ID: "A", Username: "ana"},
		{ID: "B", Username: "bruno"},
		{ID: "C", Username: "carla"},
	}
	newEvent := baseEvent()
	newEvent.Organizers = []models.Organizer{{ID: "B", Username: "bruno"}}

	c := Diff(&oldEvent, &newEvent)
	require.Len(t, c.OrganizersRemoved, 2)
	assert.Equal(t, "A", c.OrganizersRemoved[0].ID)
	assert.Equal(t, "C", c.OrganizersRemoved[1].ID)
}

func TestDiffOrganizerRoleLabelUpdatedInPlace(t *testing.T) {
	oldEvent := baseEvent()
	newEvent := baseEvent()
	newEvent.Organizers = []models.Organizer{{ID: "A", Username: "ana", Role: "Ayudante"}}

	c := Diff(&oldEvent, &newEvent)
	assert.Empty(t, c.OrganizersAdded)
	assert.Empty(t, c.OrganizersRemoved)
	require.Len(t, c.OrganizersUpdated, 1)
	assert.Equal(t, "A", c.OrganizersUpdated[0].ID)
	assert.Equal(t, "Líder", c.OrganizersUpdated[0].OldRole)
	assert.Equal(t, "Ayudante", c.OrganizersUpdated[0].NewRole)
}

func TestDiffIdenticalEventsYieldsEmptyChangeset(t *testing.T) {
	oldEvent := baseEvent()
	newEvent := baseEvent()

	c := Diff(&oldEvent, &newEvent)
	require.NotNil(t, c)
	assert.True(t, c.IsEmpty())

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}
