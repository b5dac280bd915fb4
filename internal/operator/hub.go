// Package operator streams live call events to connected operator consoles.
package operator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Event types pushed to the operator stream.
const (
	EventCallStarted = "call_started"
	EventTransition  = "transition"
	EventCallEnded   = "call_ended"
	EventAlert       = "alert"
)

// Event is one operator-visible occurrence: call lifecycle, a dialogue
// transition, or an alert (for example a failed disposition write).
type Event struct {
	Type   string    `json:"type"`
	CallID string    `json:"call_id,omitempty"`
	Phone  string    `json:"phone,omitempty"`
	Step   string    `json:"step,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

const writeTimeout = 2 * time.Second

// Hub fans events out to connected operator consoles. Publishing never
// blocks call handling on a slow console; a connection that cannot keep up
// is dropped.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*websocket.Conn)}
}

// Register adds a console connection under the given id, replacing any
// previous connection with the same id.
func (h *Hub) Register(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.conns[id]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "connection replaced")
	}
	h.conns[id] = conn
	slog.Info("Operator console connected", "conn_id", id)
}

// Unregister removes a console connection.
func (h *Hub) Unregister(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns[id]; ok && current == conn {
		delete(h.conns, id)
		slog.Info("Operator console disconnected", "conn_id", id)
	}
}

// Connected returns the number of attached consoles.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Publish sends an event to every connected console. Consoles that fail the
// write are closed and dropped.
func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		slog.Error("Failed to encode operator event", "error", err, "type", evt.Type)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			slog.Debug("Dropping stalled operator console", "conn_id", id, "error", err)
			_ = conn.Close(websocket.StatusPolicyViolation, "write timeout")
			delete(h.conns, id)
		}
	}
}

// Close disconnects every console, for shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.conns, id)
	}
}
