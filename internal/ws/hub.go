package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// Event is a moderation event pushed to connected dashboard clients.
type Event struct {
	Type          string    `json:"type"` // submitted, approved, rejected, featured, archived, responded, deleted
	TestimonialID uint      `json:"testimonial_id"`
	Status        string    `json:"status,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Hub fans moderation events out to every connected client. The feed is
// one-way and lossy: a slow client gets disconnected, a full broadcast
// queue drops the event. Moderation itself never waits on the feed.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes registrations and broadcasts. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Event feed client connected", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Event feed client disconnected", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// send buffer full, drop the client asynchronously
					go h.Unregister(client)
					logger.Warn("Event feed client send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish broadcasts an event to all clients. Best-effort: a full
// broadcast queue drops the event with a warning.
func (h *Hub) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, nil)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Event feed broadcast queue full, event dropped", map[string]interface{}{
			"type":           event.Type,
			"testimonial_id": event.TestimonialID,
		})
	}
}

// Register adds a client to the feed.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the feed.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
