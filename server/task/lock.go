package task

import (
	"errors"
	"sync"
)

// ErrLocked is returned when work guarded by a KeyedLock is attempted while
// the key is held.
var ErrLocked = errors.New("already in progress")

// KeyedLock is an advisory lock per key. It never blocks: a key that is held
// simply cannot be acquired a second time until it is released.
type KeyedLock[K comparable] struct {
	mu   sync.Mutex
	held map[K]struct{}
}

// TryLock acquires the lock for key. On success the returned function releases
// it; calling the release function more than once is a no-op.
func (l *KeyedLock[K]) TryLock(key K) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[K]struct{})
	}
	if _, ok := l.held[key]; ok {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports if key is currently locked.
func (l *KeyedLock[K]) Held(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
