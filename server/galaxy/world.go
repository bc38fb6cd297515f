package galaxy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/entity"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/mcdb"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/teleporter"
)

// worldOpener opens planets stored in their own world folder.
type worldOpener struct {
	log *slog.Logger
}

func (o worldOpener) Open(_ context.Context, p planet.Planet) (*world.World, error) {
	prov, err := mcdb.Config{Log: o.log}.Open(p.Folder)
	if err != nil {
		return nil, fmt.Errorf("open world %s: %w", p.Folder, err)
	}
	return world.Config{
		Log:      o.log.With("planet", p.Name),
		Dim:      dimension(p.Type),
		Provider: prov,
		Entities: entity.DefaultRegistry,
	}.New(), nil
}

func (o worldOpener) Close(w *world.World) error {
	return w.Close()
}

func dimension(t planet.Type) world.Dimension {
	switch t {
	case planet.Nether:
		return world.Nether
	case planet.End:
		return world.End
	default:
		return world.Overworld
	}
}

// region is a loaded planet.
type region struct {
	planet uuid.UUID
	w      *world.World
	frames map[string]struct{}
}

func (r region) Planet() uuid.UUID { return r.planet }

// View runs fn in a transaction of the world. It must not be called from a
// transaction.
func (r region) View(ctx context.Context, fn func(v teleporter.View)) error {
	select {
	case <-r.w.Exec(func(tx *world.Tx) { fn(txView{tx: tx, frames: r.frames}) }):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// txView exposes the blocks and entities of a transaction.
type txView struct {
	tx     *world.Tx
	frames map[string]struct{}
}

func (v txView) IsFrame(pos cube.Pos) bool {
	return isFrame(v.tx, v.frames, pos)
}

func isFrame(tx *world.Tx, frames map[string]struct{}, pos cube.Pos) bool {
	name, _ := tx.Block(pos).EncodeBlock()
	_, ok := frames[name]
	return ok
}

func (v txView) EntitiesWithin(lo, hi mgl64.Vec3) []teleporter.Located {
	var located []teleporter.Located
	for e := range v.tx.EntitiesWithin(cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])) {
		located = append(located, teleporter.Located{Entity: entityOf(e), Position: e.Position()})
	}
	return located
}

func entityOf(e world.Entity) teleporter.Entity {
	kind := teleporter.KindOther
	if _, ok := e.(*player.Player); ok {
		kind = teleporter.KindPlayer
	}
	return teleporter.Entity{ID: e.H().UUID(), Kind: kind}
}

// regions loads planets as teleporter regions.
type regions struct {
	loader *planet.Loader[*world.World]
	frames map[string]struct{}
}

func (r regions) Region(ctx context.Context, id uuid.UUID) (teleporter.Region, error) {
	w, err := r.loader.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return region{planet: id, w: w, frames: r.frames}, nil
}

// worldOf returns the world of a region created by regions.
func worldOf(r teleporter.Region) (*world.World, error) {
	reg, ok := r.(region)
	if !ok {
		return nil, fmt.Errorf("region of planet %v is not a world", r.Planet())
	}
	return reg.w, nil
}
