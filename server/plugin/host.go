package plugin

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// Host is the server a Manager runs plugins on.
type Host[S any, C any] interface {
	// Instance returns the underlying server value.
	Instance() S
	// Config returns the server configuration.
	Config() C
	Logger() *slog.Logger
	// World returns the overworld of the server.
	World() *world.World
	// Nether returns the nether of the server.
	Nether() *world.World
	// End returns the end of the server.
	End() *world.World
	// Player looks up an online player.
	Player(id uuid.UUID) (*world.EntityHandle, bool)
	// PlayerCount returns the amount of online players.
	PlayerCount() int
	// PlayerSummaries returns the players currently connected, including
	// players that joined before a plugin was enabled.
	PlayerSummaries() []PlayerSummary
}
