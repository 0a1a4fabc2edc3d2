// Package realtime pushes calendar changes to connected viewers over
// WebSocket. There is a single feed; Redis pub/sub fans messages out across
// instances.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes a calendar message to Redis for cross-instance delivery.
type Publisher interface {
	PublishCalendarEvent(event string, payload []byte) error
}

// Subscriber subscribes to the calendar channel and invokes handler for
// incoming messages.
type Subscriber interface {
	SubscribeCalendar(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected calendar viewers.
type Hub struct {
	clients   map[string]*Client
	mu        sync.RWMutex
	logger    *zap.Logger
	pub       Publisher
	sub       Subscriber
	cancelSub func()
}

// NewHub creates a calendar feed hub. pub and sub may be nil for
// single-instance deployments; messages then stay local.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Start begins consuming the Redis calendar channel. Each published message is
// delivered to local clients exactly once, on this path.
func (h *Hub) Start() error {
	if h.sub == nil {
		return nil
	}
	cancel, err := h.sub.SubscribeCalendar(func(event string, payload []byte) {
		h.broadcastLocal(event, json.RawMessage(payload))
	})
	if err != nil {
		// Without the subscription a successful publish would never come back
		// to local viewers. Drop to local-only delivery.
		h.pub = nil
		h.sub = nil
		return err
	}
	h.cancelSub = cancel
	return nil
}

// Stop cancels the Redis subscription.
func (h *Hub) Stop() {
	if h.cancelSub != nil {
		h.cancelSub()
		h.cancelSub = nil
	}
}

// Register adds a connected viewer.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("viewer connected", zap.String("client_id", c.ID), zap.Int("viewers", count))
}

// Unregister removes a viewer.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("viewer disconnected", zap.String("client_id", c.ID), zap.Int("viewers", count))
}

// ViewerCount returns the number of connected viewers on this instance.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers a calendar message to every viewer. With Redis wired the
// message is published only; the subscription callback performs the local
// delivery once for all instances, avoiding duplicates.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishCalendarEvent(event, data); err == nil {
			return
		}
		// Redis down: fall through so local viewers still hear about it.
	}
	h.broadcastLocal(event, json.RawMessage(data))
}

func (h *Hub) broadcastLocal(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
