// Package data implements typed data components that can be attached to items,
// blocks and GUI buttons. A component is identified by a namespaced Key and
// stored in any value holder that exposes string keyed values.
package data

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

var (
	// ErrDuplicateKey is returned when a key with the same name or ID is
	// registered twice.
	ErrDuplicateKey = errors.New("data key already registered")
	// ErrInvalidKey is returned when a key name has no namespace or is empty.
	ErrInvalidKey = errors.New("invalid data key")
)

// Namespace is the namespace used by all built-in components.
const Namespace = "galaxy"

// Key identifies a component holding values of type T.
type Key[T any] struct {
	name string
	id   uint64
}

// NewKey creates a key for the namespaced name passed, for example
// "galaxy:uuid".
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name, id: fnv1a.HashString64(name)}
}

// Name returns the namespaced name of the key.
func (k Key[T]) Name() string { return k.name }

// ID returns a stable numeric identifier derived from the key name.
func (k Key[T]) ID() uint64 { return k.id }

func (k Key[T]) String() string { return k.name }

// Descriptor is the untyped view of a Key stored in a Registry.
type Descriptor interface {
	Name() string
	ID() uint64
}

// Registry holds every registered component key.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	byID   map[uint64]Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor), byID: make(map[uint64]Descriptor)}
}

// Register adds key to the registry.
func (r *Registry) Register(key Descriptor) error {
	name := key.Name()
	ns, path, ok := strings.Cut(name, ":")
	if !ok || ns == "" || path == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, name)
	}
	if other, exists := r.byID[key.ID()]; exists {
		return fmt.Errorf("%w: %s collides with %s", ErrDuplicateKey, name, other.Name())
	}
	r.byName[name] = key
	r.byID[key.ID()] = key
	return nil
}

// Lookup returns the key registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Len returns the amount of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
