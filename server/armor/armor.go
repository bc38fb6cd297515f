// Package armor tracks potion-style effects granted by worn equipment and keeps
// them applied for as long as they are tracked.
package armor

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/task"
)

// Sentinel is the duration used for tracked effects. The host expires every
// effect eventually, so the Tracker refreshes them well before this elapses.
const Sentinel = time.Duration(math.MaxInt32) * time.Second / 20

// RefreshInterval is the default interval between two refreshes.
const RefreshInterval = 3 * time.Second

// Kind identifies an effect type, using the host's numeric effect IDs.
type Kind int

// Applier applies effects to players of the host server.
type Applier interface {
	// Apply gives the player an effect of kind at level for Sentinel without
	// particles. It returns false if the player is not online.
	Apply(player uuid.UUID, kind Kind, level int) bool
	// Strip removes every active effect of kind from the player.
	Strip(player uuid.UUID, kind Kind)
	// Online reports if the player is connected.
	Online(player uuid.UUID) bool
}

// Tracker holds the effect levels granted to every player.
type Tracker struct {
	log     *slog.Logger
	applier Applier

	mu      sync.Mutex
	effects map[uuid.UUID]map[Kind]int
}

// NewTracker creates a Tracker applying effects through a.
func NewTracker(log *slog.Logger, a Applier) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{log: log, applier: a, effects: make(map[uuid.UUID]map[Kind]int)}
}

// OfferEffect tracks kind at level for player and applies it immediately.
func (t *Tracker) OfferEffect(player uuid.UUID, kind Kind, level int) {
	t.mu.Lock()
	m, ok := t.effects[player]
	if !ok {
		m = make(map[Kind]int)
		t.effects[player] = m
	}
	m[kind] = level
	t.mu.Unlock()

	t.applier.Apply(player, kind, level)
}

// RemoveEffect stops tracking kind for player and strips it from the player.
func (t *Tracker) RemoveEffect(player uuid.UUID, kind Kind) {
	t.mu.Lock()
	if m, ok := t.effects[player]; ok {
		delete(m, kind)
		if len(m) == 0 {
			delete(t.effects, player)
		}
	}
	t.mu.Unlock()

	t.applier.Strip(player, kind)
}

// RemoveAllEffect stops tracking every effect of player and strips them.
func (t *Tracker) RemoveAllEffect(player uuid.UUID) {
	t.mu.Lock()
	m := t.effects[player]
	delete(t.effects, player)
	t.mu.Unlock()

	for kind := range m {
		t.applier.Strip(player, kind)
	}
}

// Forget drops the state of player without touching the player itself. It is
// called when the player leaves the server.
func (t *Tracker) Forget(player uuid.UUID) {
	t.mu.Lock()
	delete(t.effects, player)
	t.mu.Unlock()
}

// Effects returns a copy of the effects tracked for player.
func (t *Tracker) Effects(player uuid.UUID) map[Kind]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.effects[player])
}

// Tracked returns the amount of players with at least one tracked effect.
func (t *Tracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.effects)
}

// Refresh re-applies every tracked effect. Players that are no longer online
// are dropped.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	snapshot := make(map[uuid.UUID]map[Kind]int, len(t.effects))
	for id, m := range t.effects {
		snapshot[id] = maps.Clone(m)
	}
	t.mu.Unlock()

	var gone []uuid.UUID
	for id, m := range snapshot {
		if !t.applier.Online(id) {
			gone = append(gone, id)
			continue
		}
		for kind, level := range m {
			if !t.applier.Apply(id, kind, level) {
				gone = append(gone, id)
				break
			}
		}
	}
	if len(gone) == 0 {
		return
	}
	t.mu.Lock()
	for _, id := range gone {
		delete(t.effects, id)
	}
	t.mu.Unlock()
	t.log.Debug("Pruned offline players from effect tracker.", "count", len(gone))
}

// Run refreshes tracked effects every interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = RefreshInterval
	}
	task.Every(ctx, interval, t.Refresh)
}
