package teleporter

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/google/uuid"
)

func entities(n int) []Entity {
	es := make([]Entity, n)
	for i := range es {
		es[i] = Entity{ID: uuid.New()}
	}
	return es
}

func TestAssignRoundRobin(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{0, 64, 0}
	targets := []cube.Pos{{1, 64, 0}, {2, 64, 0}, {3, 64, 0}}
	activator := uuid.New()
	for n := 0; n < 8; n++ {
		passengers := entities(n)
		// The activator stands in the middle of the snapshot.
		snapshot := append(append(append([]Entity(nil), passengers[:n/2]...), Entity{ID: activator, Kind: KindPlayer}), passengers[n/2:]...)

		got := Assign(activator, snapshot, targets, anchor)
		if len(got) != n+1 {
			t.Fatalf("Assign() returned %d placements, want %d", len(got), n+1)
		}
		for i, p := range got[:n] {
			if p.Entity != passengers[i] {
				t.Fatalf("placement %d entity = %v, want %v", i, p.Entity, passengers[i])
			}
			if want := targets[i%len(targets)]; p.Cell != want {
				t.Fatalf("passenger %d cell = %v, want %v", i, p.Cell, want)
			}
			if p.Activator {
				t.Fatalf("passenger %d marked activator", i)
			}
		}
		last := got[n]
		if !last.Activator || last.Entity.ID != activator || last.Cell != anchor {
			t.Fatalf("last placement = %+v, want activator on anchor", last)
		}
		if want := Landing(anchor); last.Position != want {
			t.Fatalf("activator position = %v, want %v", last.Position, want)
		}
	}
}

func TestAssignNoTargets(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{5, 70, 5}
	activator := uuid.New()
	got := Assign(activator, entities(4), nil, anchor)
	for _, p := range got {
		if p.Cell != anchor {
			t.Fatalf("placement %+v, want anchor", p)
		}
	}
	if !got[len(got)-1].Activator {
		t.Fatalf("last placement is not the activator")
	}
}

func TestAssignActivatorNotOnFrame(t *testing.T) {
	t.Parallel()

	activator := uuid.New()
	got := Assign(activator, nil, []cube.Pos{{1, 0, 0}}, cube.Pos{})
	if len(got) != 1 || got[0].Entity != (Entity{ID: activator, Kind: KindPlayer}) {
		t.Fatalf("Assign() = %+v, want only the activator", got)
	}
}
