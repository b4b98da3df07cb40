package sse

import "sync"

// Event is one server-sent event. Type becomes the SSE "event:" name and Data
// is JSON-encoded into the "data:" line.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Publisher delivers events to a user's open streams.
type Publisher interface {
	Publish(userID uint, ev Event)
}

// Hub keeps the SSE subscribers of this process grouped by user.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint]map[chan Event]struct{})}
}

// Subscribe registers a stream for userID. The returned function unsubscribes
// and closes the channel; call it when the client disconnects.
func (h *Hub) Subscribe(userID uint) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subscribers[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subscribers, userID)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Publish sends ev to every stream of userID. A stream whose buffer is full misses the event.
func (h *Hub) Publish(userID uint, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports how many streams userID has open.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
