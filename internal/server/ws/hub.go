// Package ws pushes engine snapshots to WebSocket clients. The hub holds one
// subscription to the engine's snapshot stream and fans each published
// snapshot out to every connected client as a JSON text frame, so a client
// always renders the same consistent state a REST read would return.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/suilfg/marketsim/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message. Clients
	// only ever send control traffic.
	maxMessageSize = 512

	// sendBufferSize is the channel buffer for outgoing frames per client.
	sendBufferSize = 16
)

// SnapshotStream is the engine-side contract: a feed of published snapshots
// plus point-in-time reads for newly connected clients.
type SnapshotStream interface {
	Snapshot() domain.Snapshot
	Subscribe() (<-chan domain.Snapshot, func())
}

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the HTTP layer; the simulator serves
		// local frontends.
		return true
	},
}

// envelope is the frame format sent to clients.
type envelope struct {
	Type    string          `json:"type"`
	Payload domain.Snapshot `json:"payload"`
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub manages the set of connected WebSocket clients.
type Hub struct {
	stream     SnapshotStream
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a hub bridging the engine snapshot stream to WebSocket
// clients.
func NewHub(stream SnapshotStream, logger *slog.Logger) *Hub {
	return &Hub{
		stream:     stream,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

// Run starts the hub's main event loop: client registration plus snapshot
// fan-out. It exits when the provided context is cancelled or the engine
// closes the snapshot stream.
func (h *Hub) Run(ctx context.Context) error {
	snaps, cancel := h.stream.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("ws: client connected",
				slog.Int("total_clients", h.clientCount()),
			)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("ws: client disconnected",
				slog.Int("total_clients", h.clientCount()),
			)

		case snap, ok := <-snaps:
			if !ok {
				h.closeAll()
				return nil
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) broadcast(snap domain.Snapshot) {
	frame, err := json.Marshal(envelope{Type: "snapshot", Payload: snap})
	if err != nil {
		h.logger.Error("ws: marshal snapshot failed",
			slog.String("error", err.Error()),
		)
		return
	}

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			// Client's send buffer is full; drop the frame. The next
			// snapshot supersedes it anyway.
			h.logger.Warn("ws: dropping frame for slow client")
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.register <- c
	c.sendCurrentSnapshot()

	go c.writePump()
	go c.readPump()
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sendCurrentSnapshot pushes the latest snapshot so a new client renders
// state immediately instead of waiting for the next publish.
func (c *client) sendCurrentSnapshot() {
	frame, err := json.Marshal(envelope{Type: "snapshot", Payload: c.hub.stream.Snapshot()})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// readPump drains the WebSocket connection. Clients send nothing but control
// frames; any read error tears the connection down.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// writePump pumps frames from the hub to the WebSocket connection and sends
// periodic pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
