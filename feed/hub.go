// Package feed pushes reservation lifecycle events to floor-board screens
// connected over websocket.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may fall behind before it is dropped.
	sendBuffer = 64
)

type Message struct {
	Event  string      `json:"event"`
	Data   interface{} `json:"data"`
	SentAt time.Time   `json:"sent_at"`
}

// TableUpdate is what a floor board needs to know about a reservation.
// Guest contact details stay out of the feed.
type TableUpdate struct {
	ID              uint      `json:"id"`
	TableID         uint      `json:"table_id"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          string    `json:"status"`
}

func newTableUpdate(r *models.Reservation) TableUpdate {
	return TableUpdate{
		ID:              r.ID,
		TableID:         r.TableID,
		ReservationTime: r.ReservationTime,
		Status:          r.Status,
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected screens and fans messages out to all of them.
// Each client has its own writer goroutine, so a stalled screen never
// holds up the request that published the event.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	go h.writeLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("feed: dropping client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish implements services.Publisher.
func (h *Hub) Publish(ev services.Event) {
	var data interface{}
	if ev.Reservation != nil {
		data = newTableUpdate(ev.Reservation)
	} else {
		data = map[string]int64{"count": ev.Count}
	}
	h.Broadcast(Message{Event: ev.Type, Data: data})
}

// Broadcast queues msg for every client without blocking. A client whose
// queue is full is dropped.
func (h *Hub) Broadcast(msg Message) {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("feed: marshal %s: %v", msg.Event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.Printf("feed: dropping slow client %s", conn.RemoteAddr())
			h.removeLocked(conn)
		}
	}
	utils.InfoLogger.Debugf("feed: %s queued for %d clients", msg.Event, len(h.clients))
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		// WriteControl may run alongside the client's writer goroutine.
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		h.removeLocked(conn)
	}
}
