package hub

import (
	"context"
	"encoding/json"
	"sync"

	"socialnet/backend/internal/intimate"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single open event stream of a user.
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub keeps the open streams of every connected user. A user may have
// several streams, one per browser tab.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe registers a new stream for userID.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a stream and closes its channel.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Connected reports how many streams userID has open.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Send delivers an event to every stream of userID.
func (h *Hub) Send(userID uint, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return nil
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full; the SSE handler unsubscribes it when the
			// connection drops.
		}
	}
	return nil
}

// Publish forwards an intimate event to both users of the pair.
func (h *Hub) Publish(_ context.Context, e intimate.Event) error {
	ev := Event{Type: string(e.Type), Payload: e}
	if err := h.Send(e.SenderID, ev); err != nil {
		return err
	}
	return h.Send(e.ReceiverID, ev)
}
