package operator

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// WebSocketHandler upgrades operator console connections and attaches them
// to the hub. The stream is one-way: the server pushes events and reads are
// drained only to notice disconnects.
type WebSocketHandler struct {
	hub            *Hub
	allowedOrigins []string
}

// NewWebSocketHandler creates a handler that feeds the given hub.
func NewWebSocketHandler(hub *Hub, allowedOrigins []string) *WebSocketHandler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &WebSocketHandler{hub: hub, allowedOrigins: allowedOrigins}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.allowedOrigins,
	})
	if err != nil {
		slog.Error("Failed to accept operator WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}

	id := uuid.NewString()
	h.hub.Register(id, conn)
	defer h.hub.Unregister(id, conn)

	// Block until the console goes away. Incoming frames are discarded.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
