// Package ws pushes payment state changes to the owner's live websocket
// connections. Delivery is live-only: there is no backlog or replay, and
// the membership table is rebuilt from zero on every restart.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/neonpay/neonpay-gobackend/internal/models"
)

// Event is the wire shape of a server→client notification.
type Event struct {
	Event   string                 `json:"event"`
	Payment *models.PaymentRequest `json:"payment"`
}

// Hub groups live clients by principal id and fans events out to exactly
// the addressed principal's connections. Create one per process and pass it
// around explicitly; tests instantiate their own.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]bool)}
}

// Register joins a client to its principal's group. Clients with no verified
// principal stay connected but are never joined, so they receive nothing.
func (h *Hub) Register(c *Client) {
	if c.userID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.clients[c.userID]
	if !ok {
		group = make(map[*Client]bool)
		h.clients[c.userID] = group
	}
	group[c] = true
}

// Unregister removes a client from its group and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	if c.userID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := group[c]; !ok {
		return
	}
	delete(group, c)
	close(c.send)
	if len(group) == 0 {
		delete(h.clients, c.userID)
	}
}

// Publish delivers a paymentUpdated event to every live connection of the
// given owner. Clients whose send buffer is full are skipped rather than
// blocking the caller.
func (h *Hub) Publish(ownerID string, payment *models.PaymentRequest) {
	message, err := json.Marshal(Event{Event: "paymentUpdated", Payment: payment})
	if err != nil {
		log.Printf("Failed to encode payment event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[ownerID] {
		select {
		case client.send <- message:
		default:
			log.Printf("Dropping payment event for slow client of user %s", ownerID)
		}
	}
}

// SubscriberCount reports how many live connections a principal has.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}
