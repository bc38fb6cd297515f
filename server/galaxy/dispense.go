package galaxy

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/model"
	"github.com/df-mc/dragonfly/server/entity"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/sound"

	"github.com/oktw/galaxy/server/dispenser"
)

// Dispense runs the plant behaviour for a dispenser at pos facing face that
// dispenses s. It returns the stack left in the dispenser and false if the
// item has no plant behaviour, in which case the caller runs its own
// behaviour.
func (x *Extension) Dispense(tx *world.Tx, pos cube.Pos, face cube.Face, s item.Stack) (item.Stack, bool) {
	res := x.dispenser.Dispense(dispenseWorld{tx: tx, orig: s}, dispenser.Source{Pos: pos, Facing: face}, toDispenser(s))
	if !res.Handled {
		return s, false
	}
	if res.Placed {
		x.log.Debug("Dispenser planted.", "pos", pos, "item", itemName(s))
	}
	return fromDispenser(s, res.Stack), true
}

// dispenseWorld implements dispenser.World over a transaction.
type dispenseWorld struct {
	tx   *world.Tx
	orig item.Stack
}

func (w dispenseWorld) Block(pos cube.Pos) string {
	name, _ := w.tx.Block(pos).EncodeBlock()
	return name
}

func (w dispenseWorld) Solid(pos cube.Pos) bool {
	b := w.tx.Block(pos)
	if _, ok := b.(block.Air); ok {
		return false
	}
	_, ok := b.Model().(model.Solid)
	return ok
}

func (w dispenseWorld) OpaqueFullCube(pos cube.Pos) bool {
	b := w.tx.Block(pos)
	if _, ok := b.Model().(model.Solid); !ok {
		return false
	}
	if d, ok := b.(interface{ LightDiffusionLevel() uint8 }); ok {
		return d.LightDiffusionLevel() >= 15
	}
	return true
}

func (w dispenseWorld) Fluid(pos cube.Pos) dispenser.Fluid {
	l, ok := w.tx.Liquid(pos)
	if !ok {
		return dispenser.FluidNone
	}
	switch l.(type) {
	case block.Water:
		return dispenser.FluidWater
	case block.Lava:
		return dispenser.FluidLava
	}
	return dispenser.FluidNone
}

func (w dispenseWorld) Light(pos cube.Pos) uint8 {
	return w.tx.Light(pos)
}

func (w dispenseWorld) Place(pos cube.Pos, p dispenser.Placement) bool {
	if p.Rule.Block == dispenser.Cocoa {
		w.tx.SetBlock(pos, block.CocoaBean{Facing: p.Facing}, nil)
		return true
	}
	b, ok := defaultState(p.Rule.Block)
	if !ok {
		return false
	}
	w.tx.SetBlock(pos, b, nil)
	return true
}

var defaultStates sync.Map

// defaultState returns the first registered state of the block named. Names
// without a registered block are cached as misses.
func defaultState(name string) (world.Block, bool) {
	if v, ok := defaultStates.Load(name); ok {
		b, found := v.(world.Block)
		return b, found
	}
	for _, b := range world.Blocks() {
		if n, _ := b.EncodeBlock(); n == name {
			defaultStates.Store(name, b)
			return b, true
		}
	}
	defaultStates.Store(name, nil)
	return nil, false
}

func (w dispenseWorld) PlaySound(pos cube.Pos, _ dispenser.Sound) {
	w.tx.PlaySound(pos.Vec3Centre(), sound.BlockPlace{Block: w.tx.Block(pos)})
}

func (w dispenseWorld) Eject(src dispenser.Source, s dispenser.Stack) dispenser.Stack {
	if s.Count <= 0 {
		return s
	}
	one := fromDispenser(w.orig, dispenser.Stack{Item: s.Item, Count: 1})
	if one.Empty() {
		return s
	}
	opts := world.EntitySpawnOpts{Position: src.Pos.Side(src.Facing).Vec3Centre()}
	w.tx.AddEntity(entity.NewItem(opts, one))
	s.Count--
	return s
}
