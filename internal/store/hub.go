package store

import (
	"context"
	"sync"
)

// Hub fans snapshots out to in-process subscribers, keyed by owner.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Add registers a subscriber for owner and queues initial on it. The
// subscription ends when ctx is done.
func (h *Hub) Add(ctx context.Context, owner string, initial Event) <-chan Event {
	ch := make(chan Event, 1)
	ch <- initial

	h.mu.Lock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[chan Event]struct{})
	}
	h.subs[owner][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[owner], ch)
		if len(h.subs[owner]) == 0 {
			delete(h.subs, owner)
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish delivers ev to every subscriber of owner. Subscribers that have
// not consumed the previous event only see the newest one.
func (h *Hub) Publish(owner string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[owner] {
		Send(ch, ev)
	}
}

// Subscribers reports how many subscribers owner has.
func (h *Hub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}
