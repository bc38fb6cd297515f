// Package command implements the chat commands of the extension.
package command

import (
	"errors"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/teleporter"
)

// Teleporters is the extension state the commands operate on. Methods taking
// a transaction must be called from that transaction.
type Teleporters interface {
	Create(tx *world.Tx, p *player.Player, name string, crossPlanet bool) (teleporter.Teleporter, error)
	Remove(tx *world.Tx, p *player.Player) (teleporter.Teleporter, error)
	Teleporters() ([]teleporter.Teleporter, error)
	Open(tx *world.Tx, p *player.Player) error
	GiveRemote(tx *world.Tx, p *player.Player) (teleporter.Teleporter, error)
	OpenTest(p *player.Player) error
	PlanetName(id uuid.UUID) string
	Translate(p *player.Player, key string, args ...any) string
}

// respond returns the translation key of the message reporting err to a
// player, or an empty string if err is not meant for players.
func respond(err error) string {
	switch {
	case errors.Is(err, teleporter.ErrNotFound):
		return "Respond.NoTeleporter"
	case errors.Is(err, teleporter.ErrOccupied):
		return "Respond.TeleporterExists"
	case errors.Is(err, planet.ErrUnknown):
		return "Respond.UnknownPlanet"
	}
	return ""
}

// fail reports err to the source of a command.
func fail(t Teleporters, p *player.Player, o *cmd.Output, err error) {
	if key := respond(err); key != "" {
		o.Error(t.Translate(p, key))
		return
	}
	o.Errorf("Command failed: %v", err)
}

// playerOnly is embedded by commands that need a player source.
type playerOnly struct{}

func (playerOnly) Allow(src cmd.Source) bool {
	_, ok := src.(*player.Player)
	return ok
}
