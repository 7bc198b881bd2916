package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nereus/internal/metrics"
	"nereus/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Mobile clients connect from app webviews without an Origin header
		return true
	},
}

// Message is the envelope for all live-feed payloads
type Message struct {
	Type      string      `json:"type"`
	PondID    string      `json:"pond_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// client is one connected live-feed subscriber, optionally filtered to a pond
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	pondID string
}

// Hub fans out prediction and water-quality events to connected dashboard
// and mobile clients. Clients may subscribe to a single pond via the
// pond_id query parameter.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	log        *logger.Logger
}

// NewHub creates a live-feed hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        logger.Get().With("component", "live_hub"),
	}
}

// Run pumps registrations and broadcasts until the context is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			metrics.WebSocketClients.Set(0)
			return

		case c := <-h.register:
			h.clients[c] = true
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			h.log.Debugf("Client connected, %d total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.WebSocketClients.Set(float64(len(h.clients)))
				h.log.Debugf("Client disconnected, %d total", len(h.clients))
			}

		case raw := <-h.broadcast:
			var msg Message
			_ = json.Unmarshal(raw, &msg)
			for c := range h.clients {
				if c.pondID != "" && msg.PondID != "" && c.pondID != msg.PondID {
					continue
				}
				select {
				case c.send <- raw:
				default:
					delete(h.clients, c)
					close(c.send)
					metrics.WebSocketClients.Set(float64(len(h.clients)))
				}
			}
		}
	}
}

// BroadcastPrediction pushes a new prediction to subscribers
func (h *Hub) BroadcastPrediction(pondID uuid.UUID, data interface{}) {
	h.publish(Message{
		Type:      "prediction",
		PondID:    pondID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// BroadcastQualityAlert pushes a water-quality alert to subscribers
func (h *Hub) BroadcastQualityAlert(pondID uuid.UUID, data interface{}) {
	h.publish(Message{
		Type:      "quality_alert",
		PondID:    pondID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// BroadcastReadings pushes freshly ingested readings to subscribers
func (h *Hub) BroadcastReadings(pondID uuid.UUID, data interface{}) {
	h.publish(Message{
		Type:      "readings",
		PondID:    pondID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

func (h *Hub) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal live message: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("Broadcast channel full, dropping message", "type", msg.Type)
	}
}

// HandleWebSocket upgrades the connection and registers the client
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		pondID: r.URL.Query().Get("pond_id"),
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump drains client messages; the feed is one-way, so incoming frames
// only serve to detect disconnects
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debugf("WebSocket closed unexpectedly: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
