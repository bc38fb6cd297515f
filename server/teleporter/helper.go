package teleporter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Helper answers queries about teleporters and the targets they may reach.
type Helper struct {
	store Store
}

// NewHelper returns a Helper reading from store.
func NewHelper(store Store) *Helper {
	return &Helper{store: store}
}

// Store returns the store the helper reads from.
func (h *Helper) Store() Store {
	return h.store
}

// Get returns the teleporter with the ID passed.
func (h *Helper) Get(id uuid.UUID) (Teleporter, error) {
	return h.store.Get(id)
}

// CanReach reports if target is a valid target of source: it is a different
// teleporter, and on the same planet unless source may cross planets.
func CanReach(source, target Teleporter) bool {
	if source.ID == target.ID {
		return false
	}
	return source.CrossPlanet || source.Planet == target.Planet
}

// AvailableTargets returns the teleporters source may reach. Targets on the
// same planet come first, ordered by distance, followed by targets on other
// planets ordered by name.
func (h *Helper) AvailableTargets(source Teleporter) ([]Teleporter, error) {
	all, err := h.store.All()
	if err != nil {
		return nil, fmt.Errorf("list teleporters: %w", err)
	}
	targets := slices.DeleteFunc(all, func(t Teleporter) bool {
		return !CanReach(source, t)
	})
	slices.SortFunc(targets, func(a, b Teleporter) int {
		aLocal, bLocal := a.Planet == source.Planet, b.Planet == source.Planet
		switch {
		case aLocal && !bLocal:
			return -1
		case !aLocal && bLocal:
			return 1
		case aLocal:
			if c := cmp.Compare(source.Distance(a), source.Distance(b)); c != 0 {
				return c
			}
		}
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return targets, nil
}

// All returns every teleporter ordered by name.
func (h *Helper) All() ([]Teleporter, error) {
	all, err := h.store.All()
	if err != nil {
		return nil, fmt.Errorf("list teleporters: %w", err)
	}
	slices.SortFunc(all, func(a, b Teleporter) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return all, nil
}
