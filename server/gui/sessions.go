package gui

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Sessions tracks the views each player has open. The most recently opened
// view of a player is the current one.
type Sessions struct {
	mu    sync.Mutex
	views map[uuid.UUID][]*PageView
}

// NewSessions returns an empty Sessions.
func NewSessions() *Sessions {
	return &Sessions{views: make(map[uuid.UUID][]*PageView)}
}

// Open records v as the current view of player.
func (s *Sessions) Open(player uuid.UUID, v *PageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[player] = append(s.views[player], v)
}

// Current returns the current view of player.
func (s *Sessions) Current(player uuid.UUID) (*PageView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.views[player]
	if len(views) == 0 {
		return nil, false
	}
	return views[len(views)-1], true
}

// Close removes v from the views of player. It reports if v was open.
func (s *Sessions) Close(player uuid.UUID, v *PageView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.views[player]
	i := slices.Index(views, v)
	if i < 0 {
		return false
	}
	views = slices.Delete(views, i, i+1)
	if len(views) == 0 {
		delete(s.views, player)
	} else {
		s.views[player] = views
	}
	return true
}

// CloseAll removes and returns every view of player.
func (s *Sessions) CloseAll(player uuid.UUID) []*PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.views[player]
	delete(s.views, player)
	return views
}

// Len reports the amount of views player has open.
func (s *Sessions) Len(player uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views[player])
}

// Forget drops every view of a player that left.
func (s *Sessions) Forget(player uuid.UUID) {
	s.CloseAll(player)
}
