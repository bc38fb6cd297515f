package galaxy

import (
	"context"
	"errors"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/item/inventory"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oktw/galaxy/server/data"
	"github.com/oktw/galaxy/server/event"
	"github.com/oktw/galaxy/server/teleporter"
)

// Custom item kinds stored in the data.ItemType component.
const (
	itemButton = "button"
	itemRemote = "remote"
)

type playerHandler struct {
	player.NopHandler
	x *Extension
}

func (h playerHandler) HandleItemUse(ctx *player.Context) {
	p := ctx.Val()
	held, _ := p.HeldItems()
	if held.Empty() {
		return
	}
	e := h.x.interact.Emit(event.NewInteractItem(p.UUID(), itemName(held), stackValues{held}))
	if e.Cancelled() {
		ctx.Cancel()
	}
	if e.Swung() {
		p.SwingArm()
	}
}

func (h playerHandler) HandleItemUseOnBlock(ctx *player.Context, pos cube.Pos, _ cube.Face, _ mgl64.Vec3) {
	p := ctx.Val()
	if p.Sneaking() {
		return
	}
	t, err := h.x.teleporterAt(p.Tx(), pos)
	if err != nil {
		return
	}
	ctx.Cancel()
	if err := h.x.OpenTeleporter(p, t); err != nil {
		h.x.log.Error("Open teleporter.", "player", p.Name(), "teleporter", t.ID, "error", err)
	}
}

func (h playerHandler) HandleBlockBreak(ctx *player.Context, pos cube.Pos, _ *[]item.Stack, _ *int) {
	p := ctx.Val()
	t, err := h.x.teleporterAt(p.Tx(), pos)
	if err != nil {
		return
	}
	if err := h.x.store.Delete(t.ID); err != nil {
		h.x.log.Error("Remove broken teleporter.", "teleporter", t.ID, "error", err)
		return
	}
	h.x.log.Info("Teleporter removed.", "teleporter", t.ID, "name", t.Name, "player", p.Name())
	p.Message(h.x.translate(p, "Respond.TeleporterRemoved", t.Name))
}

func (h playerHandler) HandleQuit(p *player.Player) {
	h.x.quit(p.UUID())
}

type inventoryHandler struct {
	inventory.NopHandler
	x *Extension
}

func isButton(s item.Stack) bool {
	kind, _ := data.Get(stackValues{s}, data.ItemType)
	return kind == itemButton
}

func (inventoryHandler) HandleTake(ctx *inventory.Context, _ int, it item.Stack) {
	if isButton(it) {
		ctx.Cancel()
	}
}

func (inventoryHandler) HandlePlace(ctx *inventory.Context, _ int, it item.Stack) {
	if isButton(it) {
		ctx.Cancel()
	}
}

func (inventoryHandler) HandleDrop(ctx *inventory.Context, _ int, it item.Stack) {
	if isButton(it) {
		ctx.Cancel()
	}
}

// useRemote opens the selection window of the teleporter a remote is bound
// to.
func (x *Extension) useRemote(e *event.InteractItem) {
	if kind, _ := data.Get(e.Values, data.ItemType); kind != itemRemote {
		return
	}
	e.Cancel()
	e.Swing()
	id, ok := data.Get(e.Values, data.UUID)
	if !ok {
		return
	}
	t, err := x.store.Get(id)
	if errors.Is(err, teleporter.ErrNotFound) {
		x.Notify(e.Player, "Respond.NoTeleporter")
		return
	} else if err != nil {
		x.log.Error("Read remote teleporter.", "teleporter", id, "error", err)
		return
	}
	owner := e.Player
	x.api.Go(func(context.Context) {
		x.api.WithPlayer(owner, func(_ *world.Tx, p *player.Player) {
			if err := x.OpenTeleporter(p, t); err != nil {
				x.log.Error("Open teleporter.", "player", p.Name(), "teleporter", t.ID, "error", err)
			}
		})
	})
}
