// Package realtime fans chat messages out to the clients streaming a room.
package realtime

import (
	"sync"

	"mandi/internal/models"
)

const subscriberBuffer = 16

// Subscription receives the messages published to one room.
type Subscription struct {
	RoomID string
	C      <-chan models.Message

	ch   chan models.Message
	once sync.Once
}

// Hub keeps the live subscribers of every room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(roomID string) *Subscription {
	ch := make(chan models.Message, subscriberBuffer)
	sub := &Subscription{RoomID: roomID, C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Subscription]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if subs, ok := h.rooms[sub.RoomID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, sub.RoomID)
		}
	}
	h.mu.Unlock()
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers msg to every subscriber of its room without blocking. A subscriber
// whose buffer is full misses the message and returns dropped > 0.
func (h *Hub) Publish(msg models.Message) (delivered, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[msg.ChatRoomID] {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

// Subscribers reports how many clients stream roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
