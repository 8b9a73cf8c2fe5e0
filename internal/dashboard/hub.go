package dashboard

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans a value out to subscribers. The zero value is ready to use.
// Subscribers are called synchronously from Notify and must not block for long.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[uuid.UUID]func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	id := uuid.New()

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[uuid.UUID]func(T))
	}
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Notify calls every subscriber with v.
func (h *Hub[T]) Notify(v T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
