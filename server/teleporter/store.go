package teleporter

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no teleporter matches a query.
	ErrNotFound = errors.New("teleporter not found")
	// ErrOccupied is returned when storing a teleporter at a position that
	// already holds another teleporter.
	ErrOccupied = errors.New("position already holds a teleporter")
)

// Store persists teleporters.
type Store interface {
	// Get returns the teleporter with the ID passed, or ErrNotFound.
	Get(id uuid.UUID) (Teleporter, error)
	// At returns the teleporter anchored at pos on planet, or ErrNotFound.
	At(planet uuid.UUID, pos cube.Pos) (Teleporter, error)
	// Put inserts or replaces t.
	Put(t Teleporter) error
	// Delete removes the teleporter with the ID passed, or returns
	// ErrNotFound.
	Delete(id uuid.UUID) error
	// All returns every stored teleporter in no particular order.
	All() ([]Teleporter, error)
	Close() error
}

type location struct {
	planet uuid.UUID
	pos    cube.Pos
}

// MemoryStore is a Store that keeps teleporters in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]Teleporter
	position map[location]uuid.UUID
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]Teleporter), position: make(map[location]uuid.UUID)}
}

// Get ...
func (s *MemoryStore) Get(id uuid.UUID) (Teleporter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.records[id]
	if !ok {
		return Teleporter{}, ErrNotFound
	}
	return t, nil
}

// At ...
func (s *MemoryStore) At(planet uuid.UUID, pos cube.Pos) (Teleporter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.position[location{planet, pos}]
	if !ok {
		return Teleporter{}, ErrNotFound
	}
	return s.records[id], nil
}

// Put ...
func (s *MemoryStore) Put(t Teleporter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := location{t.Planet, t.Position}
	if id, ok := s.position[loc]; ok && id != t.ID {
		return ErrOccupied
	}
	if old, ok := s.records[t.ID]; ok {
		delete(s.position, location{old.Planet, old.Position})
	}
	s.records[t.ID] = t
	s.position[loc] = t.ID
	return nil
}

// Delete ...
func (s *MemoryStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	delete(s.position, location{t.Planet, t.Position})
	return nil
}

// All ...
func (s *MemoryStore) All() ([]Teleporter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.records)), nil
}

// Close ...
func (s *MemoryStore) Close() error { return nil }
