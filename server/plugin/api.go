package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/item/inventory"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// API is the view of the server handed to one plugin.
type API[S any, C any] struct {
	manager *Manager[S, C]
	name    atomic.Value // string
	ctx     context.Context
}

func newAPI[S any, C any](m *Manager[S, C], name string, ctx context.Context) *API[S, C] {
	api := &API[S, C]{manager: m, ctx: ctx}
	api.name.Store(name)
	return api
}

func (api *API[S, C]) setName(name string) {
	if name != "" {
		api.name.Store(name)
	}
}

// Name returns the name of the plugin.
func (api *API[S, C]) Name() string {
	return api.name.Load().(string)
}

// Context returns a context cancelled when the plugin is disabled.
func (api *API[S, C]) Context() context.Context {
	return api.ctx
}

// Logger returns the server logger scoped to the plugin.
func (api *API[S, C]) Logger() *slog.Logger {
	return api.manager.log.With("plugin", api.Name())
}

// DataDirectory returns the directory the plugin stores its data in.
func (api *API[S, C]) DataDirectory() string {
	return api.manager.dataDirectory(api.Name())
}

// DataPath resolves name inside the data directory. Paths escaping the data
// directory are rejected.
func (api *API[S, C]) DataPath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("data path %q must be relative and not empty", name)
	}
	base := api.DataDirectory()
	target := filepath.Join(base, filepath.Clean(name))
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("data path %q escapes the plugin directory", name)
	}
	return target, nil
}

// EnsureDataSubdir creates a directory inside the data directory and returns
// its path.
func (api *API[S, C]) EnsureDataSubdir(name string) (string, error) {
	path, err := api.DataPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Go runs fn on a new goroutine with the plugin context. A panic in fn
// disables the plugin.
func (api *API[S, C]) Go(fn func(ctx context.Context)) {
	name := api.Name()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				api.manager.recoverPanic(name, r)
			}
		}()
		fn(api.ctx)
	}()
}

// Server returns the server the plugin runs on.
func (api *API[S, C]) Server() S {
	return api.manager.host.Instance()
}

// Config returns the server configuration.
func (api *API[S, C]) Config() C {
	return api.manager.host.Config()
}

// World returns the overworld.
func (api *API[S, C]) World() *world.World {
	return api.manager.host.World()
}

// Nether returns the nether.
func (api *API[S, C]) Nether() *world.World {
	return api.manager.host.Nether()
}

// End returns the end.
func (api *API[S, C]) End() *world.World {
	return api.manager.host.End()
}

// PlayerCount returns the amount of online players.
func (api *API[S, C]) PlayerCount() int {
	return api.manager.host.PlayerCount()
}

// PlayerSummaries returns the players currently connected to the server.
func (api *API[S, C]) PlayerSummaries() []PlayerSummary {
	return api.manager.host.PlayerSummaries()
}

// WithPlayer runs fn in the transaction of the world the player is in. It
// returns false if the player is not online. WithPlayer blocks until fn has
// run, so it must not be called from a transaction of the same world.
func (api *API[S, C]) WithPlayer(id uuid.UUID, fn func(tx *world.Tx, p *player.Player)) bool {
	handle, ok := api.manager.host.Player(id)
	if !ok {
		return false
	}
	ran := false
	handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		if p, ok := e.(*player.Player); ok {
			fn(tx, p)
			ran = true
		}
	})
	return ran
}

// RegisterCommand registers a command with the server.
func (api *API[S, C]) RegisterCommand(c cmd.Command) {
	cmd.Register(c)
}

// OnPlayer adds a handler receiving the events of every player. The returned
// function removes it.
func (api *API[S, C]) OnPlayer(h player.Handler) func() {
	return api.manager.events.addPlayer(api.Name(), h)
}

// OnInventory adds a handler receiving the events of every player inventory.
// The returned function removes it.
func (api *API[S, C]) OnInventory(h inventory.Handler) func() {
	return api.manager.events.addInventory(api.Name(), h)
}
