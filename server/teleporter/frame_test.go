package teleporter

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// grid is a FrameView holding the frame blocks passed.
type grid map[cube.Pos]bool

func (g grid) IsFrame(pos cube.Pos) bool { return g[pos] }

// square returns a frame of side*side blocks centred on anchor, excluding the
// anchor itself.
func square(anchor cube.Pos, side int) grid {
	g := make(grid)
	for x := -side / 2; x < side-side/2; x++ {
		for z := -side / 2; z < side-side/2; z++ {
			if x == 0 && z == 0 {
				continue
			}
			g[anchor.Add(cube.Pos{x, 0, z})] = true
		}
	}
	return g
}

func TestSearchFrame(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{10, 64, -10}
	tests := map[string]struct {
		view   grid
		budget int
		want   int
		ok     bool
	}{
		"empty":           {grid{}, 64, 0, true},
		"3x3":             {square(anchor, 3), 64, 8, true},
		"exact budget":    {square(anchor, 3), 8, 8, true},
		"over budget":     {square(anchor, 3), 7, 0, false},
		"9x9 over 64":     {square(anchor, 9), 64, 0, false},
		"zero budget":     {square(anchor, 3), 0, 0, false},
		"other plane":     {grid{anchor.Add(cube.Pos{1, 1, 0}): true}, 64, 0, true},
		"disconnected":    {grid{anchor.Add(cube.Pos{2, 0, 0}): true}, 64, 0, true},
		"diagonal only":   {grid{anchor.Add(cube.Pos{1, 0, 1}): true}, 64, 0, true},
		"line of two":     {grid{anchor.Add(cube.Pos{1, 0, 0}): true, anchor.Add(cube.Pos{2, 0, 0}): true}, 64, 2, true},
		"negative budget": {grid{}, -1, 0, true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, ok := SearchFrame(tt.view, anchor, tt.budget)
			if ok != tt.ok {
				t.Fatalf("SearchFrame() ok = %v, want %v", ok, tt.ok)
			}
			if got := len(f.Cells()); got != tt.want {
				t.Fatalf("len(Cells()) = %v, want %v", got, tt.want)
			}
			if got := len(f.Cells()); got > max(tt.budget, 0) {
				t.Fatalf("len(Cells()) = %v exceeds budget %v", got, tt.budget)
			}
		})
	}
}

func TestSearchFrameNeverExceedsBudget(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{0, 70, 0}
	view := square(anchor, 15)
	for budget := 0; budget <= len(view)+1; budget++ {
		f, ok := SearchFrame(view, anchor, budget)
		if f.Len() > budget {
			t.Fatalf("SearchFrame(budget=%d) returned %d cells", budget, f.Len())
		}
		if ok != (budget >= len(view)) {
			t.Fatalf("SearchFrame(budget=%d) ok = %v, want %v", budget, ok, budget >= len(view))
		}
	}
}

func TestSearchFrameOrder(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{0, 64, 0}
	f, ok := SearchFrame(square(anchor, 3), anchor, 64)
	if !ok {
		t.Fatalf("SearchFrame() ok = false")
	}
	want := []cube.Pos{
		anchor.Side(cube.FaceNorth), anchor.Side(cube.FaceEast),
		anchor.Side(cube.FaceSouth), anchor.Side(cube.FaceWest),
	}
	for i, pos := range want {
		if f.Cells()[i] != pos {
			t.Fatalf("Cells()[%d] = %v, want %v", i, f.Cells()[i], pos)
		}
	}
}

func TestFrameContains(t *testing.T) {
	t.Parallel()

	anchor := cube.Pos{-3, 5, 1000}
	f, _ := SearchFrame(square(anchor, 3), anchor, 64)
	if !f.Contains(anchor) {
		t.Fatalf("Contains(anchor) = false")
	}
	if !f.Contains(anchor.Add(cube.Pos{-1, 0, -1})) {
		t.Fatalf("Contains(corner) = false")
	}
	if f.Contains(anchor.Add(cube.Pos{2, 0, 0})) || f.Contains(anchor.Add(cube.Pos{0, 1, 0})) {
		t.Fatalf("Contains() = true outside the frame")
	}
	if !f.Supports(mgl64.Vec3{-2.5, 6, 1000.5}) {
		t.Fatalf("Supports() = false for entity on the frame")
	}
	if f.Supports(mgl64.Vec3{-2.5, 8, 1000.5}) {
		t.Fatalf("Supports() = true for entity above the frame")
	}
	lo, hi := f.Bounds()
	if lo != (mgl64.Vec3{-4, 6, 999}) || hi != (mgl64.Vec3{-1, 7, 1002}) {
		t.Fatalf("Bounds() = %v, %v", lo, hi)
	}
}

func TestPackPosDistinct(t *testing.T) {
	t.Parallel()

	seen := make(map[int64]cube.Pos)
	for _, pos := range []cube.Pos{{0, 0, 0}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-30000000, 319, 30000000}, {30000000, -64, -30000000}} {
		k := packPos(pos)
		if other, ok := seen[k]; ok {
			t.Fatalf("packPos(%v) = packPos(%v)", pos, other)
		}
		seen[k] = pos
	}
}
