package live

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fitnessbooking/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

const EventSlotsUpdated = "slots_updated"

var ErrHubClosed = errors.New("live hub closed")

// SlotUpdate is pushed to subscribers whenever a booking changes a class's
// remaining capacity.
type SlotUpdate struct {
	Type           string    `json:"type"`
	ClassID        string    `json:"class_id"`
	ClassName      string    `json:"class_name"`
	RemainingSlots int       `json:"remaining_slots"`
	TotalSlots     int       `json:"total_slots"`
	At             time.Time `json:"at"`
}

type clientMessage struct {
	Type    string `json:"type"`
	ClassID string `json:"class_id"`
}

// connection is one subscriber. An empty class set means every class.
type connection struct {
	conn    *websocket.Conn
	send    chan []byte
	classes map[string]bool
}

func (c *connection) wants(classID string) bool {
	return len(c.classes) == 0 || c.classes[classID]
}

// Hub fans slot updates out to WebSocket subscribers. It satisfies
// events.Publisher so the booking service can feed it directly.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*connection]struct{}
	closed bool
}

var _ events.Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{conns: make(map[*connection]struct{})}
}

func (h *Hub) register(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}

// Count reports the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) PublishBookingCreated(_ context.Context, ev events.BookingCreated) error {
	return h.Broadcast(SlotUpdate{
		Type:           EventSlotsUpdated,
		ClassID:        ev.ClassID,
		ClassName:      ev.ClassName,
		RemainingSlots: ev.RemainingSlots,
		TotalSlots:     ev.TotalSlots,
		At:             ev.BookedAt,
	})
}

// Broadcast queues the update for every interested subscriber. Slow clients
// whose buffer is full miss the update rather than stall the caller.
func (h *Hub) Broadcast(u SlotUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for c := range h.conns {
		if !c.wants(u.ClassID) {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
	return nil
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.conns {
		delete(h.conns, c)
		close(c.send)
	}
}

// Serve runs the read and write pumps for conn until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, classIDs []string) {
	c := &connection{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		classes: make(map[string]bool, len(classIDs)),
	}
	for _, id := range classIDs {
		if id != "" {
			c.classes[id] = true
		}
	}

	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.ClassID == "" {
			continue
		}

		h.mu.Lock()
		switch msg.Type {
		case "subscribe":
			c.classes[msg.ClassID] = true
		case "unsubscribe":
			delete(c.classes, msg.ClassID)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
