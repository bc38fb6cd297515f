// Package teleporter implements teleporters: persisted anchor records, the
// frames built around them and the transfer of the entities standing on a
// frame to the frame of another teleporter, possibly on another planet.
package teleporter

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Teleporter is a teleporter anchored at a block position on a planet.
type Teleporter struct {
	ID   uuid.UUID
	Name string
	// Planet is the planet the teleporter is placed on.
	Planet   uuid.UUID
	Position cube.Pos
	// CrossPlanet teleporters may target teleporters on other planets.
	CrossPlanet bool
}

// New returns a teleporter with a fresh ID.
func New(name string, planet uuid.UUID, pos cube.Pos, crossPlanet bool) Teleporter {
	return Teleporter{ID: uuid.New(), Name: name, Planet: planet, Position: pos, CrossPlanet: crossPlanet}
}

// Landing returns the position an entity lands on when delivered to the
// anchor of t.
func (t Teleporter) Landing() mgl64.Vec3 {
	return Landing(t.Position)
}

// Distance returns the distance between the anchors of t and o. It is only
// meaningful when both are on the same planet.
func (t Teleporter) Distance(o Teleporter) float64 {
	return t.Position.Vec3Centre().Sub(o.Position.Vec3Centre()).Len()
}

// String ...
func (t Teleporter) String() string {
	return fmt.Sprintf("%v (%v) at %v", t.Name, t.ID, t.Position)
}

// Landing returns the feet position of an entity standing on top of the
// block at pos.
func Landing(pos cube.Pos) mgl64.Vec3 {
	return pos.Vec3().Add(mgl64.Vec3{0.5, 1, 0.5})
}
