package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"draftboard/pkg/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// event is a message pushed to every connected sync client.
type event struct {
	Type      string `json:"type"`
	DiagramID string `json:"diagram_id,omitempty"`
}

// Hub tracks websocket clients and broadcasts diagram change notifications.
// Clients receive lightweight "diagram_updated" events and re-fetch the
// authoritative state over HTTP; slow clients that cannot drain their send
// buffer are dropped rather than blocking the broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{clients: map[*client]struct{}{}, logger: logger}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// NotifyUpdated broadcasts a diagram_updated event.
func (h *Hub) NotifyUpdated(diagramID string) {
	h.broadcast(event{Type: "diagram_updated", DiagramID: diagramID})
}

// NotifyClosed broadcasts a diagram_closed event.
func (h *Hub) NotifyClosed() {
	h.broadcast(event{Type: "diagram_closed"})
}

func (h *Hub) broadcast(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client stopped draining; drop it.
			delete(h.clients, c)
			close(c.send)
			observability.Sync().OnClientDisconnect(len(h.clients))
		}
	}
	observability.Sync().OnBroadcast(ev.Type, len(h.clients))
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is same-machine tooling; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket connected", "connections", n)
	observability.Sync().OnClientConnect(n)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket disconnected", "connections", n)
	observability.Sync().OnClientDisconnect(n)
}

// readPump consumes client messages. The only recognized request is a text
// "ping", answered with a pong event; everything else keeps the connection
// alive and is otherwise ignored.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) == "ping" {
			select {
			case c.send <- []byte(`{"type": "pong"}`):
			default:
			}
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
