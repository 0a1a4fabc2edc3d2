package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFeed stands in for the Redis bridge. A successful publish loops the
// message back through the subscription handler, like a real pub/sub delivery.
type stubFeed struct {
	published int
	pubErr    error
	subErr    error
	handler   func(event string, payload []byte)
}

func (s *stubFeed) PublishCalendarEvent(event string, payload []byte) error {
	if s.pubErr != nil {
		return s.pubErr
	}
	s.published++
	if s.handler != nil {
		s.handler(event, payload)
	}
	return nil
}

func (s *stubFeed) SubscribeCalendar(handler func(event string, payload []byte)) (func(), error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	s.handler = handler
	return func() { s.handler = nil }, nil
}

func newTestViewer(id string) *Client {
	return &Client{ID: id, send: make(chan WSMessage, 4)}
}

func receiveOne(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatal("no message delivered")
		return WSMessage{}
	}
}

func TestBroadcastWithoutFeedDeliversLocally(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	require.NoError(t, hub.Start())
	viewer := newTestViewer("v1")
	hub.Register(viewer)

	hub.Broadcast("event_created", map[string]string{"id": "e1"})

	msg := receiveOne(t, viewer)
	assert.Equal(t, "event_created", msg.Event)
	assert.JSONEq(t, `{"id":"e1"}`, string(msg.Data))
}

func TestBroadcastViaFeedDeliversExactlyOnce(t *testing.T) {
	feed := &stubFeed{}
	hub := NewHub(zap.NewNop(), feed, feed)
	require.NoError(t, hub.Start())
	viewer := newTestViewer("v1")
	hub.Register(viewer)

	hub.Broadcast("event_updated", map[string]string{"id": "e1"})

	assert.Equal(t, 1, feed.published)
	receiveOne(t, viewer)
	assert.Empty(t, viewer.send)
}

func TestBroadcastFallsBackWhenSubscribeFails(t *testing.T) {
	feed := &stubFeed{subErr: errors.New("redis down")}
	hub := NewHub(zap.NewNop(), feed, feed)
	require.Error(t, hub.Start())
	viewer := newTestViewer("v1")
	hub.Register(viewer)

	// Publishing would succeed here, but with no subscription the message
	// would never loop back. The hub must deliver locally instead.
	hub.Broadcast("event_deleted", map[string]string{"id": "e1"})

	assert.Equal(t, 0, feed.published)
	msg := receiveOne(t, viewer)
	assert.Equal(t, "event_deleted", msg.Event)
}

func TestBroadcastFallsBackWhenPublishFails(t *testing.T) {
	feed := &stubFeed{}
	hub := NewHub(zap.NewNop(), feed, feed)
	require.NoError(t, hub.Start())
	feed.pubErr = errors.New("connection lost")
	viewer := newTestViewer("v1")
	hub.Register(viewer)

	hub.Broadcast("event_created", map[string]string{"id": "e1"})

	msg := receiveOne(t, viewer)
	assert.Equal(t, "event_created", msg.Event)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	viewer := newTestViewer("v1")
	hub.Register(viewer)
	assert.Equal(t, 1, hub.ViewerCount())

	hub.Unregister(viewer)
	assert.Equal(t, 0, hub.ViewerCount())
	hub.Broadcast("event_created", map[string]string{"id": "e1"})
	assert.Empty(t, viewer.send)
}
