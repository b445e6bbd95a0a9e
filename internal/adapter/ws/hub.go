package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// event is the envelope pushed to connected clients: waiting-room displays
// follow queue_advance events, patient apps follow delivery_status.
type event struct {
	Event          string `json:"event"`
	QueueKey       string `json:"queue_key,omitempty"`
	Position       int    `json:"position,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Timestamp      string `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Accept(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readPump(conn)
	return nil
}

func (h *Hub) BroadcastAdvance(queueKey string, position int) {
	h.broadcast(event{
		Event:     "queue_advance",
		QueueKey:  queueKey,
		Position:  position,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Hub) BroadcastDelivery(notificationID, status, timestamp string) {
	h.broadcast(event{
		Event:          "delivery_status",
		NotificationID: notificationID,
		Status:         status,
		Timestamp:      timestamp,
	})
}

func (h *Hub) broadcast(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		go func(c *websocket.Conn) {
			if err := c.Write(context.Background(), websocket.MessageText, data); err != nil {
				h.removeClient(c)
			}
		}(conn)
	}
}

func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.removeClient(conn)
	for {
		_, _, err := conn.Read(context.Background())
		if err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
