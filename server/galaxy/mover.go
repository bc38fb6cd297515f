package galaxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/text"

	"github.com/oktw/galaxy/server/teleporter"
)

var (
	errOffline        = errors.New("player is offline")
	errEntityNotFound = errors.New("entity not found")
)

type teleportable interface {
	Teleport(pos mgl64.Vec3)
}

// mover moves players and entities between worlds. Moving to another world
// removes the entity from its transaction and adds it in the destination
// world.
type mover struct {
	x *Extension
}

func (m mover) TeleportPlayer(ctx context.Context, id uuid.UUID, to teleporter.Region, pos mgl64.Vec3) error {
	dest, err := worldOf(to)
	if err != nil {
		return err
	}
	var handle *world.EntityHandle
	online := m.x.api.WithPlayer(id, func(tx *world.Tx, p *player.Player) {
		if tx.World() == dest {
			p.Teleport(pos)
			return
		}
		handle = tx.RemoveEntity(p)
	})
	if !online {
		return errOffline
	}
	if handle == nil {
		return nil
	}
	return enter(ctx, dest, handle, pos)
}

func (m mover) TransferEntity(id uuid.UUID, from, to teleporter.Region, pos mgl64.Vec3) error {
	src, err := worldOf(from)
	if err != nil {
		return err
	}
	dest, err := worldOf(to)
	if err != nil {
		return err
	}
	var (
		found  bool
		handle *world.EntityHandle
	)
	<-src.Exec(func(tx *world.Tx) {
		for e := range tx.Entities() {
			if e.H().UUID() != id {
				continue
			}
			found = true
			if src == dest {
				if t, ok := e.(teleportable); ok {
					t.Teleport(pos)
				}
				return
			}
			handle = tx.RemoveEntity(e)
			return
		}
	})
	if !found {
		return fmt.Errorf("%w: %v", errEntityNotFound, id)
	}
	if handle == nil {
		return nil
	}
	return enter(context.Background(), dest, handle, pos)
}

// enter adds the entity behind handle to dest at pos.
func enter(ctx context.Context, dest *world.World, handle *world.EntityHandle, pos mgl64.Vec3) error {
	done := dest.Exec(func(tx *world.Tx) {
		if t, ok := tx.AddEntity(handle).(teleportable); ok {
			t.Teleport(pos)
		}
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify sends a translated message to a player. It never blocks, so it is
// safe to call from a transaction.
func (x *Extension) Notify(id uuid.UUID, key string, args ...any) {
	x.api.Go(func(context.Context) {
		x.api.WithPlayer(id, func(_ *world.Tx, p *player.Player) {
			p.Message(text.Colourf("<red>%s</red>", x.translate(p, key, args...)))
		})
	})
}

// closeWindows closes every selection window of a player.
func (x *Extension) closeWindows(id uuid.UUID) {
	x.sessions.CloseAll(id)
	x.api.WithPlayer(id, func(_ *world.Tx, p *player.Player) {
		p.CloseForm()
	})
}
