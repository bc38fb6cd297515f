// Package planet holds the catalogue of planets, the independently loaded
// worlds teleporters may link, and loads their worlds on demand.
package planet

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Type is the dimension type of a planet.
type Type uint8

const (
	Normal Type = iota
	Nether
	End
)

// String ...
func (t Type) String() string {
	switch t {
	case Nether:
		return "nether"
	case End:
		return "end"
	}
	return "normal"
}

// ParseType parses the name of a planet type. The empty string is Normal.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "overworld":
		return Normal, nil
	case "nether":
		return Nether, nil
	case "end", "the_end":
		return End, nil
	}
	return 0, fmt.Errorf("unknown planet type %q", s)
}

// Planet is an entry of the catalogue.
type Planet struct {
	ID   uuid.UUID
	Name string
	Type Type
	// Folder is the world folder of the planet. Planets without a folder use
	// the server's own world of their type.
	Folder string
}

// Builtin reports if the planet is backed by one of the server's own worlds.
func (p Planet) Builtin() bool {
	return p.Folder == ""
}

var (
	// ErrUnknown is returned for planet IDs not in the catalogue.
	ErrUnknown = errors.New("unknown planet")
	// ErrInvalid is returned by NewCatalogue for invalid entries.
	ErrInvalid = errors.New("invalid planet")
)

// Catalogue is an immutable set of planets.
type Catalogue struct {
	planets []Planet
	byID    map[uuid.UUID]int
}

// NewCatalogue validates planets and returns a catalogue holding them. IDs
// and names must be unique, and at most one built-in planet may exist per
// type.
func NewCatalogue(planets []Planet) (*Catalogue, error) {
	c := &Catalogue{planets: slices.Clone(planets), byID: make(map[uuid.UUID]int, len(planets))}
	names := make(map[string]struct{}, len(planets))
	builtin := make(map[Type]string)
	for i, p := range c.planets {
		switch {
		case p.ID == uuid.Nil:
			return nil, fmt.Errorf("%w: planet %q has no id", ErrInvalid, p.Name)
		case p.Name == "":
			return nil, fmt.Errorf("%w: planet %v has no name", ErrInvalid, p.ID)
		case p.Type > End:
			return nil, fmt.Errorf("%w: planet %q has type %d", ErrInvalid, p.Name, p.Type)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %v", ErrInvalid, p.ID)
		}
		key := strings.ToLower(p.Name)
		if _, ok := names[key]; ok {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalid, p.Name)
		}
		if p.Builtin() {
			if other, ok := builtin[p.Type]; ok {
				return nil, fmt.Errorf("%w: %q and %q both use the %v world", ErrInvalid, other, p.Name, p.Type)
			}
			builtin[p.Type] = p.Name
		}
		c.byID[p.ID] = i
		names[key] = struct{}{}
	}
	return c, nil
}

// Get returns the planet with the ID passed.
func (c *Catalogue) Get(id uuid.UUID) (Planet, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Planet{}, false
	}
	return c.planets[i], true
}

// ByName returns the planet with the name passed, ignoring case.
func (c *Catalogue) ByName(name string) (Planet, bool) {
	for _, p := range c.planets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Planet{}, false
}

// Builtin returns the planet backed by the server's world of type t.
func (c *Catalogue) Builtin(t Type) (Planet, bool) {
	for _, p := range c.planets {
		if p.Builtin() && p.Type == t {
			return p, true
		}
	}
	return Planet{}, false
}

// All returns the planets in configuration order.
func (c *Catalogue) All() []Planet {
	return slices.Clone(c.planets)
}

// Name returns the name of the planet with the ID passed, or its ID if it is
// not in the catalogue.
func (c *Catalogue) Name(id uuid.UUID) string {
	if p, ok := c.Get(id); ok {
		return p.Name
	}
	return id.String()
}
