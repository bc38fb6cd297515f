package armor

import (
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type applied struct {
	player uuid.UUID
	kind   Kind
	level  int
}

type fakeApplier struct {
	mu       sync.Mutex
	online   map[uuid.UUID]bool
	applied  []applied
	stripped []applied
}

func newFakeApplier(online ...uuid.UUID) *fakeApplier {
	a := &fakeApplier{online: make(map[uuid.UUID]bool)}
	for _, id := range online {
		a.online[id] = true
	}
	return a
}

func (a *fakeApplier) Apply(player uuid.UUID, kind Kind, level int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.online[player] {
		return false
	}
	a.applied = append(a.applied, applied{player, kind, level})
	return true
}

func (a *fakeApplier) Strip(player uuid.UUID, kind Kind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stripped = append(a.stripped, applied{player: player, kind: kind})
}

func (a *fakeApplier) Online(player uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.online[player]
}

func newTestTracker(a Applier) *Tracker {
	return NewTracker(slog.New(slog.NewTextHandler(io.Discard, nil)), a)
}

func TestOfferEffectAppliesImmediately(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	a := newFakeApplier(id)
	tr := newTestTracker(a)

	tr.OfferEffect(id, 1, 2)
	if len(a.applied) != 1 || a.applied[0] != (applied{id, 1, 2}) {
		t.Fatalf("applied = %v, want one speed II application", a.applied)
	}
	tr.OfferEffect(id, 1, 0)
	if got := tr.Effects(id); !maps.Equal(got, map[Kind]int{1: 0}) {
		t.Fatalf("Effects() = %v, want map[1:0]", got)
	}
}

func TestRemoveEffect(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	a := newFakeApplier(id)
	tr := newTestTracker(a)

	tr.OfferEffect(id, 1, 0)
	tr.OfferEffect(id, 8, 1)
	tr.RemoveEffect(id, 1)
	if got := tr.Effects(id); !maps.Equal(got, map[Kind]int{8: 1}) {
		t.Fatalf("Effects() = %v, want map[8:1]", got)
	}
	tr.RemoveEffect(id, 8)
	if tr.Tracked() != 0 {
		t.Fatalf("Tracked() = %d after removing every effect, want 0", tr.Tracked())
	}
	if len(a.stripped) != 2 {
		t.Fatalf("stripped %d effects, want 2", len(a.stripped))
	}
}

func TestRemoveAllEffect(t *testing.T) {
	t.Parallel()

	id, other := uuid.New(), uuid.New()
	a := newFakeApplier(id, other)
	tr := newTestTracker(a)

	tr.OfferEffect(id, 1, 0)
	tr.OfferEffect(id, 3, 0)
	tr.OfferEffect(other, 1, 0)
	tr.RemoveAllEffect(id)

	if got := tr.Effects(id); len(got) != 0 {
		t.Fatalf("Effects() after RemoveAllEffect = %v, want empty", got)
	}
	if got := tr.Effects(other); len(got) != 1 {
		t.Fatalf("RemoveAllEffect touched another player: %v", got)
	}
	if len(a.stripped) != 2 {
		t.Fatalf("stripped %d effects, want 2", len(a.stripped))
	}
}

// The tracked state must always equal a replay of the same operations on a
// plain map, whatever order they arrive in.
func TestTrackerMatchesReplay(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tr := newTestTracker(newFakeApplier(id))
	r := rand.New(rand.NewPCG(1, 2))
	want := map[Kind]int{}

	for i := 0; i < 500; i++ {
		kind := Kind(r.IntN(6))
		if r.IntN(3) == 0 {
			tr.RemoveEffect(id, kind)
			delete(want, kind)
			continue
		}
		level := r.IntN(4)
		tr.OfferEffect(id, kind, level)
		want[kind] = level
	}
	got := tr.Effects(id)
	if len(want) == 0 {
		want = nil
	}
	if !maps.Equal(got, want) {
		t.Fatalf("Effects() = %v, want %v", got, want)
	}
}

func TestRefreshReappliesAndPrunes(t *testing.T) {
	t.Parallel()

	online, offline := uuid.New(), uuid.New()
	a := newFakeApplier(online, offline)
	tr := newTestTracker(a)
	tr.OfferEffect(online, 1, 1)
	tr.OfferEffect(online, 5, 0)
	tr.OfferEffect(offline, 1, 0)

	a.mu.Lock()
	delete(a.online, offline)
	a.applied = nil
	a.mu.Unlock()

	tr.Refresh()
	if len(a.applied) != 2 {
		t.Fatalf("Refresh applied %d effects, want 2", len(a.applied))
	}
	for _, ap := range a.applied {
		if ap.player != online {
			t.Fatalf("Refresh applied an effect to %v, want only %v", ap.player, online)
		}
	}
	if tr.Tracked() != 1 {
		t.Fatalf("Tracked() = %d after refresh, want 1", tr.Tracked())
	}
	if _, ok := tr.Effects(offline)[1]; ok {
		t.Fatalf("offline player was not pruned")
	}
}

func TestForget(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	a := newFakeApplier(id)
	tr := newTestTracker(a)
	tr.OfferEffect(id, 1, 0)
	tr.Forget(id)
	if tr.Tracked() != 0 {
		t.Fatalf("Tracked() = %d after Forget, want 0", tr.Tracked())
	}
	if len(a.stripped) != 0 {
		t.Fatalf("Forget stripped effects from the player")
	}
}
