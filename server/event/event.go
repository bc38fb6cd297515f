// Package event provides a small synchronous event bus for events the host
// server does not expose as a handler method.
package event

import (
	"sync"
	"sync/atomic"
)

// Bus delivers events of type E to subscribers in subscription order.
type Bus[E any] struct {
	mu     sync.Mutex
	next   uint64
	subs   []subscription[E]
	active atomic.Value // []subscription[E]
}

type subscription[E any] struct {
	id uint64
	fn func(E)
}

// Subscribe registers fn. The returned function removes the subscription.
func (b *Bus[E]) Subscribe(fn func(E)) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscription[E]{id: id, fn: fn})
	b.active.Store(append([]subscription[E](nil), b.subs...))
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subs[:0]
			for _, s := range b.subs {
				if s.id != id {
					subs = append(subs, s)
				}
			}
			b.subs = subs
			b.active.Store(append([]subscription[E](nil), b.subs...))
		})
	}
}

// Emit calls every subscriber with e and returns e.
func (b *Bus[E]) Emit(e E) E {
	subs, _ := b.active.Load().([]subscription[E])
	for _, s := range subs {
		s.fn(e)
	}
	return e
}
