// Package host runs the plugin runtime on an upstream dragonfly server.
package host

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/plugin"
)

type (
	// API is the plugin API handed to plugins running on a dragonfly server.
	API = plugin.API[*server.Server, server.Config]
	// Factory creates a plugin running on a dragonfly server.
	Factory = plugin.Factory[*server.Server, server.Config]
	// Manager manages the plugins of a dragonfly server.
	Manager = plugin.Manager[*server.Server, server.Config]
)

// Host exposes a dragonfly server to the plugin runtime.
type Host struct {
	srv     *server.Server
	conf    server.Config
	players presence
}

// New creates the server described by conf and wraps it.
func New(conf server.Config) *Host {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Host{srv: conf.New(), conf: conf}
}

// NewManager creates a plugin Manager running plugins on h.
func (h *Host) NewManager(conf plugin.Config) *Manager {
	return plugin.NewManager[*server.Server, server.Config](h, conf)
}

func (h *Host) Instance() *server.Server { return h.srv }
func (h *Host) Config() server.Config    { return h.conf }
func (h *Host) Logger() *slog.Logger     { return h.conf.Log }
func (h *Host) World() *world.World      { return h.srv.World() }
func (h *Host) Nether() *world.World     { return h.srv.Nether() }
func (h *Host) End() *world.World        { return h.srv.End() }
func (h *Host) PlayerCount() int         { return h.srv.PlayerCount() }

// PlayerSummaries returns the players accepted by Serve that have not quit.
func (h *Host) PlayerSummaries() []plugin.PlayerSummary {
	return h.players.summaries()
}

func (h *Host) Player(id uuid.UUID) (*world.EntityHandle, bool) {
	return h.srv.Player(id)
}

var _ plugin.Host[*server.Server, server.Config] = (*Host)(nil)
