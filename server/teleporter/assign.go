package teleporter

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind is the kind of an entity being transferred.
type Kind uint8

const (
	// KindOther is any simulated entity that is not a player.
	KindOther Kind = iota
	KindPlayer
)

// Entity is an entity standing on a frame.
type Entity struct {
	ID   uuid.UUID
	Kind Kind
}

// Placement is where one entity is delivered to.
type Placement struct {
	Entity Entity
	// Cell is the block the entity lands on top of.
	Cell     cube.Pos
	Position mgl64.Vec3
	// Activator is true for the player that started the transfer.
	Activator bool
}

// Assign distributes entities over the target frame cells. Every entity but
// the activator is a passenger: passenger i lands on targets[i%len(targets)],
// or on the anchor if there are no targets. The activator always lands on the
// anchor and is returned last, even if it is not in entities.
func Assign(activator uuid.UUID, entities []Entity, targets []cube.Pos, anchor cube.Pos) []Placement {
	placements := make([]Placement, 0, len(entities)+1)
	act := Entity{ID: activator, Kind: KindPlayer}
	i := 0
	for _, e := range entities {
		if e.ID == activator {
			act = e
			continue
		}
		cell := anchor
		if len(targets) > 0 {
			cell = targets[i%len(targets)]
		}
		placements = append(placements, Placement{Entity: e, Cell: cell, Position: Landing(cell)})
		i++
	}
	return append(placements, Placement{Entity: act, Cell: anchor, Position: Landing(anchor), Activator: true})
}
