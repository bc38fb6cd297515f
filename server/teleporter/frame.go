package teleporter

import (
	"github.com/brentp/intintmap"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// FrameView reports which blocks of a region are frame blocks.
type FrameView interface {
	IsFrame(pos cube.Pos) bool
}

// FrameFunc is a function implementing FrameView.
type FrameFunc func(pos cube.Pos) bool

// IsFrame ...
func (f FrameFunc) IsFrame(pos cube.Pos) bool { return f(pos) }

// planeFaces is the order in which neighbours are visited.
var planeFaces = [...]cube.Face{cube.FaceNorth, cube.FaceEast, cube.FaceSouth, cube.FaceWest}

// Frame is the set of frame blocks connected to a teleporter anchor on the
// anchor's horizontal plane.
type Frame struct {
	anchor cube.Pos
	cells  []cube.Pos
	index  *intintmap.Map
}

// SearchFrame discovers the frame around anchor, visiting at most budget
// frame cells. Cells are returned in breadth-first order. If the frame has
// more than budget cells, SearchFrame returns false.
func SearchFrame(view FrameView, anchor cube.Pos, budget int) (Frame, bool) {
	budget = max(budget, 0)
	f := Frame{anchor: anchor, index: intintmap.New(budget+1, 0.6)}
	seen := intintmap.New(4*(budget+1), 0.6)
	seen.Put(packPos(anchor), 1)

	queue := []cube.Pos{anchor}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, face := range planeFaces {
			next := pos.Side(face)
			key := packPos(next)
			if _, ok := seen.Get(key); ok {
				continue
			}
			seen.Put(key, 1)
			if !view.IsFrame(next) {
				continue
			}
			if len(f.cells) == budget {
				return Frame{}, false
			}
			f.index.Put(key, int64(len(f.cells)))
			f.cells = append(f.cells, next)
			queue = append(queue, next)
		}
	}
	return f, true
}

// Anchor returns the position the frame was searched from.
func (f Frame) Anchor() cube.Pos {
	return f.anchor
}

// Cells returns the frame cells in discovery order. The anchor is not
// included.
func (f Frame) Cells() []cube.Pos {
	return f.cells
}

// Len returns the amount of frame cells.
func (f Frame) Len() int {
	return len(f.cells)
}

// Contains reports if pos is the anchor or one of the frame cells.
func (f Frame) Contains(pos cube.Pos) bool {
	if pos == f.anchor {
		return true
	}
	if f.index == nil {
		return false
	}
	_, ok := f.index.Get(packPos(pos))
	return ok
}

// Supports reports if an entity with its feet at pos stands on the frame.
func (f Frame) Supports(pos mgl64.Vec3) bool {
	return f.Contains(cube.PosFromVec3(pos).Side(cube.FaceDown))
}

// Bounds returns the corners of the box holding every position an entity
// standing on the frame may occupy.
func (f Frame) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	lo, hi := f.anchor, f.anchor
	for _, c := range f.cells {
		lo = cube.Pos{min(lo[0], c[0]), lo[1], min(lo[2], c[2])}
		hi = cube.Pos{max(hi[0], c[0]), hi[1], max(hi[2], c[2])}
	}
	return lo.Vec3().Add(mgl64.Vec3{0, 1, 0}), hi.Vec3().Add(mgl64.Vec3{1, 2, 1})
}

// packPos packs a block position into a single integer: 26 bits for x and z
// each and 12 bits for y.
func packPos(pos cube.Pos) int64 {
	return int64(pos[0])&0x3ffffff<<38 | int64(pos[2])&0x3ffffff<<12 | int64(pos[1])&0xfff
}
