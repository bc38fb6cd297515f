// Package gui models paginated, read-only button grids the size of a double
// chest, and tracks the grids each player has open.
package gui

import (
	"context"
	"fmt"
	"sync"

	"github.com/oktw/galaxy/server/data"
	"golang.org/x/exp/constraints"
)

// Grid dimensions. The top five rows hold buttons, the bottom row holds
// navigation.
const (
	Columns  = 9
	Rows     = 6
	Size     = Rows * Columns
	PageSize = Size - Columns

	SlotPrevious = PageSize
	SlotPage     = PageSize + Columns/2
	SlotNext     = Size - 1
)

// Button is an item shown in a grid slot.
type Button struct {
	// Item is the name of the item used as icon.
	Item string
	Name string
	Lore []string
	// Data holds the components of the button, such as the identity of the
	// object it stands for.
	Data data.Bag
}

// Empty reports if b is an empty slot.
func (b Button) Empty() bool {
	return b.Item == ""
}

// Source loads at most limit buttons after skipping skip buttons. It reports
// if further buttons exist.
type Source func(ctx context.Context, skip, limit int) (buttons []Button, more bool, err error)

// SliceSource returns a Source over a fixed list of buttons.
func SliceSource(buttons []Button) Source {
	return func(_ context.Context, skip, limit int) ([]Button, bool, error) {
		skip = clamp(skip, 0, len(buttons))
		end := clamp(skip+limit, skip, len(buttons))
		return buttons[skip:end], end < len(buttons), nil
	}
}

// Navigator creates the buttons of the navigation row.
type Navigator interface {
	Previous(page int) Button
	Next(page int) Button
	Page(page int) Button
}

// ClickKind is the effect of clicking a slot.
type ClickKind uint8

const (
	ClickNone ClickKind = iota
	ClickItem
	ClickPrevious
	ClickNext
)

// Click describes the outcome of a click on a slot.
type Click struct {
	Kind ClickKind
	// Button is the clicked button for ClickItem.
	Button Button
	// Suppressed is always true: the grid is not a real container and a click
	// must never move its items.
	Suppressed bool
}

type page struct {
	buttons []Button
	more    bool
}

// PageView is one open paginated grid. Pages are loaded from the source on
// first display and cached for the lifetime of the view. It is safe for
// concurrent use.
type PageView struct {
	title  string
	source Source
	nav    Navigator

	mu    sync.Mutex
	page  int
	pages map[int]page
}

// NewPageView returns a view showing the first page of src.
func NewPageView(title string, src Source, nav Navigator) *PageView {
	return &PageView{title: title, source: src, nav: nav, pages: make(map[int]page)}
}

// Title returns the window title.
func (v *PageView) Title() string {
	return v.title
}

// Page returns the zero based index of the current page.
func (v *PageView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// load returns page n, loading it if needed. v.mu must be held.
func (v *PageView) load(ctx context.Context, n int) (page, error) {
	if p, ok := v.pages[n]; ok {
		return p, nil
	}
	buttons, more, err := v.source(ctx, n*PageSize, PageSize)
	if err != nil {
		return page{}, fmt.Errorf("load page %d: %w", n, err)
	}
	if len(buttons) > PageSize {
		buttons, more = buttons[:PageSize], true
	}
	p := page{buttons: buttons, more: more}
	v.pages[n] = p
	return p, nil
}

// Render returns the content of every slot of the current page.
func (v *PageView) Render(ctx context.Context) ([Size]Button, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var grid [Size]Button
	p, err := v.load(ctx, v.page)
	if err != nil {
		return grid, err
	}
	copy(grid[:PageSize], p.buttons)
	if v.nav == nil {
		return grid, nil
	}
	if v.page > 0 {
		grid[SlotPrevious] = v.nav.Previous(v.page)
	}
	grid[SlotPage] = v.nav.Page(v.page)
	if p.more {
		grid[SlotNext] = v.nav.Next(v.page)
	}
	return grid, nil
}

// Click handles a click on slot of the current page. Navigation clicks change
// the current page; the caller should render the view again.
func (v *PageView) Click(ctx context.Context, slot int) (Click, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c := Click{Suppressed: true}
	if slot < 0 || slot >= Size {
		return c, nil
	}
	p, err := v.load(ctx, v.page)
	if err != nil {
		return c, err
	}
	switch {
	case slot < PageSize:
		if slot < len(p.buttons) && !p.buttons[slot].Empty() {
			c.Kind, c.Button = ClickItem, p.buttons[slot]
		}
	case slot == SlotPrevious && v.page > 0:
		v.page--
		c.Kind = ClickPrevious
	case slot == SlotNext && p.more:
		v.page++
		c.Kind = ClickNext
	}
	return c, nil
}

// SetPage moves the view to page n. Pages past the last page move the view to
// the last page.
func (v *PageView) SetPage(ctx context.Context, n int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := max(n, 0)
	for i := 0; i < target; i++ {
		p, err := v.load(ctx, i)
		if err != nil {
			return err
		}
		if !p.more {
			target = i
			break
		}
	}
	v.page = target
	return nil
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
