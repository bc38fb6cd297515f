// Package dispenser lets dispensers plant seeds, saplings and other plants
// instead of ejecting them.
package dispenser

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Fluid is the kind of fluid found at a position.
type Fluid uint8

const (
	FluidNone Fluid = iota
	FluidWater
	FluidLava
)

// Placement is a plant block about to be placed.
type Placement struct {
	Rule Rule
	// Facing is the direction the plant faces. It is only meaningful for cocoa.
	Facing cube.Direction
}

// World is the part of a host world the dispenser behaviour reads and
// mutates.
type World interface {
	// Block returns the name of the block at pos, Air for empty space.
	Block(pos cube.Pos) string
	// Solid reports if the block at pos is a solid material.
	Solid(pos cube.Pos) bool
	// OpaqueFullCube reports if the block at pos is an opaque full cube.
	OpaqueFullCube(pos cube.Pos) bool
	Fluid(pos cube.Pos) Fluid
	// Light returns the block light level at pos.
	Light(pos cube.Pos) uint8
	// Place puts the plant at pos. It returns false if the host cannot place
	// this plant.
	Place(pos cube.Pos, p Placement) bool
	PlaySound(pos cube.Pos, s Sound)
	// Eject performs the host's default dispense behaviour for stack and
	// returns the stack left in the dispenser.
	Eject(src Source, stack Stack) Stack
}

// Source is the dispenser that is activated.
type Source struct {
	Pos    cube.Pos
	Facing cube.Face
}

// Stack is the item stack being dispensed.
type Stack struct {
	Item  string
	Count int
}

// Result is the outcome of Dispense.
type Result struct {
	// Stack is the stack left in the dispenser.
	Stack Stack
	// Placed is true if a plant was placed.
	Placed bool
	// Handled is false if no rule exists for the item, in which case the host
	// should run its own behaviour.
	Handled bool
}

// Registry maps dispensed items to plant rules.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns a registry with the rules passed.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Default returns a registry holding DefaultRules.
func Default() *Registry {
	return NewRegistry(DefaultRules()...)
}

// Register installs rule, replacing any rule for the same item.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Item] = rule
}

// Rule returns the rule registered for item.
func (r *Registry) Rule(item string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[item]
	return rule, ok
}

// Items returns the amount of items with a rule.
func (r *Registry) Items() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Dispense plants stack in front of src if a rule exists for it and the
// target is legal. Otherwise the stack is ejected through w.
func (r *Registry) Dispense(w World, src Source, stack Stack) Result {
	rule, ok := r.Rule(stack.Item)
	if !ok || stack.Count <= 0 {
		return Result{Stack: stack}
	}
	return plant(w, src, stack, rule)
}

var horizontal = [...]cube.Face{cube.FaceNorth, cube.FaceEast, cube.FaceSouth, cube.FaceWest}

func plant(w World, src Source, stack Stack, rule Rule) Result {
	target := src.Pos.Side(src.Facing)
	if src.Facing == cube.FaceUp {
		target = target.Side(cube.FaceUp)
	}
	below := target.Side(cube.FaceDown)
	empty := w.Block(target) == Air

	switch rule.Block {
	case Cocoa:
		if src.Facing == cube.FaceUp || src.Facing == cube.FaceDown || !empty || !rule.supports(w.Block(target.Side(src.Facing))) {
			return eject(w, src, stack)
		}
		return place(w, src, target, Placement{Rule: rule, Facing: src.Facing.Direction()}, stack)
	case SugarCane:
		if !empty || !sugarCaneSupported(w, rule, below) {
			return eject(w, src, stack)
		}
		return place(w, src, target, Placement{Rule: rule}, stack)
	case Cactus:
		if src.Facing != cube.FaceUp || !cactusSupported(w, rule, below) {
			return eject(w, src, stack)
		}
	case RedMushroom, BrownMushroom:
		if empty && w.Light(target) < 13 && w.OpaqueFullCube(below) {
			return place(w, src, target, Placement{Rule: rule}, stack)
		}
	}
	if empty && rule.supports(w.Block(below)) {
		return place(w, src, target, Placement{Rule: rule}, stack)
	}
	return eject(w, src, stack)
}

func sugarCaneSupported(w World, rule Rule, below cube.Pos) bool {
	support := w.Block(below)
	if support == SugarCane {
		return true
	}
	if !rule.supports(support) {
		return false
	}
	for _, face := range horizontal {
		side := below.Side(face)
		if w.Fluid(side) == FluidWater || w.Block(side) == FrostedIce {
			return true
		}
	}
	return false
}

// cactusSupported checks the block the cactus is planted on: none of its
// horizontal neighbours may be solid or lava, and it must be a valid support
// that is not a liquid.
func cactusSupported(w World, rule Rule, below cube.Pos) bool {
	for _, face := range horizontal {
		side := below.Side(face)
		if w.Solid(side) || w.Fluid(side) == FluidLava {
			return false
		}
	}
	return rule.supports(w.Block(below)) && w.Fluid(below) == FluidNone
}

func place(w World, src Source, pos cube.Pos, p Placement, stack Stack) Result {
	if !w.Place(pos, p) {
		return eject(w, src, stack)
	}
	w.PlaySound(pos, p.Rule.Sound)
	stack.Count--
	return Result{Stack: stack, Placed: true, Handled: true}
}

func eject(w World, src Source, stack Stack) Result {
	return Result{Stack: w.Eject(src, stack), Handled: true}
}
