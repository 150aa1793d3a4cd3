package events

import (
	"context"
	"sync"
)

// Hub delivers events to in-process subscribers. Each subscriber has its own
// buffer; when it is full the event is dropped for that subscriber only.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	bufSize int
	dropped int
}

func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{subs: map[int]chan Event{}, bufSize: bufSize}
}

// Subscribe returns an event channel and a function that closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

func (h *Hub) Publish(_ context.Context, evt Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.dropped++
		}
	}
	return nil
}

// Dropped counts events that did not fit a subscriber's buffer.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
