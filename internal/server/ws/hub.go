// Package ws bridges the view-state controller's event stream to browser
// WebSocket clients so panels update without polling.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketdeck/internal/viewstate"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message. Clients
	// only send pongs and close frames, so this stays small.
	maxMessageSize = 512

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 64
)

// upgrader configures the WebSocket upgrade parameters. Origin checking is
// delegated to the CORS middleware in front of the mux.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Events is the event source the hub consumes; the view-state controller
// implements it.
type Events interface {
	Subscribe() (<-chan viewstate.Event, func())
	Snapshot() viewstate.Snapshot
}

// client is a single connected WebSocket peer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans view-state events out to every connected WebSocket client. On
// connect each client receives the full snapshot so it can render before the
// first event arrives.
type Hub struct {
	source Events
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a Hub for the given event source.
func NewHub(source Events, logger *slog.Logger) *Hub {
	return &Hub{
		source:  source,
		logger:  logger.With(slog.String("component", "ws")),
		clients: make(map[*client]struct{}),
	}
}

// wsMessage is the frame sent to clients: a type discriminator plus the
// event or snapshot payload.
type wsMessage struct {
	Type     string              `json:"type"` // "snapshot" or "event"
	Event    *viewstate.Event    `json:"event,omitempty"`
	Snapshot *viewstate.Snapshot `json:"snapshot,omitempty"`
}

// Run subscribes to the event source and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	events, cancel := h.source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				h.closeAll()
				return nil
			}
			data, err := json.Marshal(wsMessage{Type: "event", Event: &ev})
			if err != nil {
				h.logger.Error("marshal event", slog.String("error", err.Error()))
				continue
			}
			h.broadcast(data)
		}
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upgrade failed",
			slog.String("error", err.Error()),
		)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// Seed the client with the current view state.
	snap := h.source.Snapshot()
	if data, err := json.Marshal(wsMessage{Type: "snapshot", Snapshot: &snap}); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues data for every client, dropping it for clients whose send
// buffer is full rather than blocking the event loop.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// remove unregisters a client and closes its connection.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

// writePump pushes queued messages and periodic pings to one client.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(c)
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains incoming frames (pongs, close) and tears the client down
// when the connection drops.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
