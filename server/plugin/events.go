package plugin

import (
	"sync"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/item/inventory"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

type registration[T any] struct {
	plugin  string
	handler T
	id      uint64
}

// handlers is a list of plugin handlers. Readers load an immutable snapshot
// so that dispatch never takes a lock.
type handlers[T any] struct {
	mu   sync.Mutex
	next uint64
	regs []registration[T]
	snap atomic.Pointer[[]registration[T]]
}

func (h *handlers[T]) publish() {
	snap := append([]registration[T](nil), h.regs...)
	h.snap.Store(&snap)
}

func (h *handlers[T]) add(plugin string, handler T) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.regs = append(h.regs, registration[T]{plugin: plugin, handler: handler, id: id})
	h.publish()
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.remove(func(r registration[T]) bool { return r.id == id })
		})
	}
}

func (h *handlers[T]) remove(match func(registration[T]) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	regs := h.regs[:0]
	for _, r := range h.regs {
		if !match(r) {
			regs = append(regs, r)
		}
	}
	h.regs = regs
	h.publish()
}

func (h *handlers[T]) rename(from, to string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.regs {
		if h.regs[i].plugin == from {
			h.regs[i].plugin = to
		}
	}
	h.publish()
}

func (h *handlers[T]) load() []registration[T] {
	if snap := h.snap.Load(); snap != nil {
		return *snap
	}
	return nil
}

type eventHub[S any, C any] struct {
	manager     *Manager[S, C]
	players     handlers[player.Handler]
	inventories handlers[inventory.Handler]
}

func newEventHub[S any, C any](m *Manager[S, C]) *eventHub[S, C] {
	return &eventHub[S, C]{manager: m}
}

func (hub *eventHub[S, C]) addPlayer(plugin string, h player.Handler) func() {
	if h == nil {
		return func() {}
	}
	return hub.players.add(plugin, h)
}

func (hub *eventHub[S, C]) addInventory(plugin string, h inventory.Handler) func() {
	if h == nil {
		return func() {}
	}
	return hub.inventories.add(plugin, h)
}

func (hub *eventHub[S, C]) clear(plugin string) {
	match := func(name string) bool { return name == plugin }
	hub.players.remove(func(r registration[player.Handler]) bool { return match(r.plugin) })
	hub.inventories.remove(func(r registration[inventory.Handler]) bool { return match(r.plugin) })
}

func (hub *eventHub[S, C]) rename(from, to string) {
	if to == "" || from == to {
		return
	}
	hub.players.rename(from, to)
	hub.inventories.rename(from, to)
}

// invoke runs call, disabling plugin if it panics.
func (hub *eventHub[S, C]) invoke(plugin string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			hub.manager.recoverPanic(plugin, r)
		}
	}()
	call()
}

type cancellable interface {
	Cancelled() bool
}

// dispatch calls fn for every plugin handler and finally for base. A
// cancelled ctx stops the dispatch. ctx may be nil for events that cannot be
// cancelled.
func dispatch[S any, C any, T any](hub *eventHub[S, C], regs []registration[T], ctx cancellable, base T, fn func(T)) {
	for _, r := range regs {
		hub.invoke(r.plugin, func() { fn(r.handler) })
		if ctx != nil && ctx.Cancelled() {
			return
		}
	}
	fn(base)
}

func (hub *eventHub[S, C]) wrapPlayer(base player.Handler) player.Handler {
	if c, ok := base.(*playerChain[S, C]); ok {
		base = c.Handler
	}
	if base == nil {
		base = player.NopHandler{}
	}
	return &playerChain[S, C]{Handler: base, hub: hub}
}

func (hub *eventHub[S, C]) wrapInventory(base inventory.Handler) inventory.Handler {
	if c, ok := base.(*inventoryChain[S, C]); ok {
		base = c.Handler
	}
	if base == nil {
		base = inventory.NopHandler{}
	}
	return &inventoryChain[S, C]{Handler: base, hub: hub}
}

// playerChain forwards the player events plugins may observe to every plugin
// handler before the base handler. Other events only reach the base handler.
type playerChain[S any, C any] struct {
	player.Handler
	hub *eventHub[S, C]
}

func (c *playerChain[S, C]) run(ctx cancellable, fn func(player.Handler)) {
	dispatch(c.hub, c.hub.players.load(), ctx, c.Handler, fn)
}

func (c *playerChain[S, C]) HandleItemUse(ctx *player.Context) {
	c.run(ctx, func(h player.Handler) { h.HandleItemUse(ctx) })
}

func (c *playerChain[S, C]) HandleItemUseOnBlock(ctx *player.Context, pos cube.Pos, face cube.Face, clickPos mgl64.Vec3) {
	c.run(ctx, func(h player.Handler) { h.HandleItemUseOnBlock(ctx, pos, face, clickPos) })
}

func (c *playerChain[S, C]) HandleBlockBreak(ctx *player.Context, pos cube.Pos, drops *[]item.Stack, xp *int) {
	c.run(ctx, func(h player.Handler) { h.HandleBlockBreak(ctx, pos, drops, xp) })
}

func (c *playerChain[S, C]) HandleChangeWorld(p *player.Player, before, after *world.World) {
	c.run(nil, func(h player.Handler) { h.HandleChangeWorld(p, before, after) })
}

func (c *playerChain[S, C]) HandleQuit(p *player.Player) {
	c.run(nil, func(h player.Handler) { h.HandleQuit(p) })
}

// inventoryChain forwards inventory events to every plugin handler before
// the base handler.
type inventoryChain[S any, C any] struct {
	inventory.Handler
	hub *eventHub[S, C]
}

func (c *inventoryChain[S, C]) run(ctx cancellable, fn func(inventory.Handler)) {
	dispatch(c.hub, c.hub.inventories.load(), ctx, c.Handler, fn)
}

func (c *inventoryChain[S, C]) HandleTake(ctx *inventory.Context, slot int, it item.Stack) {
	c.run(ctx, func(h inventory.Handler) { h.HandleTake(ctx, slot, it) })
}

func (c *inventoryChain[S, C]) HandlePlace(ctx *inventory.Context, slot int, it item.Stack) {
	c.run(ctx, func(h inventory.Handler) { h.HandlePlace(ctx, slot, it) })
}

func (c *inventoryChain[S, C]) HandleDrop(ctx *inventory.Context, slot int, it item.Stack) {
	c.run(ctx, func(h inventory.Handler) { h.HandleDrop(ctx, slot, it) })
}
