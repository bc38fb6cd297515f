// Package galaxy is the teleporter extension. It binds the teleporter, planet,
// selection window, effect and dispenser components to a dragonfly server and
// runs as a plugin.
package galaxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/armor"
	"github.com/oktw/galaxy/server/command"
	"github.com/oktw/galaxy/server/data"
	"github.com/oktw/galaxy/server/dispenser"
	"github.com/oktw/galaxy/server/event"
	"github.com/oktw/galaxy/server/gui"
	"github.com/oktw/galaxy/server/host"
	"github.com/oktw/galaxy/server/lang"
	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/plugin"
	"github.com/oktw/galaxy/server/task"
	"github.com/oktw/galaxy/server/teleporter"
)

// ConfigFile is the name of the configuration file in the plugin data
// directory.
const ConfigFile = "galaxy.toml"

// Extension is the running extension.
type Extension struct {
	api  *host.API
	log  *slog.Logger
	conf Config

	tr         *lang.Translator
	components *data.Registry
	store      teleporter.Store
	helper     *teleporter.Helper
	planets    *planet.Loader[*world.World]
	executor   *task.Executor
	transfers  *teleporter.Transferer
	effects    *armor.Tracker
	sessions   *gui.Sessions
	interact   event.Bus[*event.InteractItem]
	dispenser  *dispenser.Registry
	testLock   task.KeyedLock[uuid.UUID]

	unsub []func()
}

// Init creates the extension. It is the plugin factory of the extension.
func Init(api *host.API) (plugin.Plugin, error) {
	x, err := New(api)
	if err != nil {
		return nil, err
	}
	return x, nil
}

var _ host.Factory = Init

// New starts the extension on the server of api.
func New(api *host.API) (x *Extension, err error) {
	path, err := api.DataPath(ConfigFile)
	if err != nil {
		return nil, err
	}
	conf, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	x = &Extension{
		api:        api,
		log:        api.Logger().With("component", "galaxy"),
		conf:       conf,
		components: data.NewRegistry(),
		sessions:   gui.NewSessions(),
		dispenser:  dispenser.Default(),
	}
	var closers []func() error
	defer func() {
		if err != nil {
			for _, c := range slices.Backward(closers) {
				_ = c()
			}
		}
	}()

	if err := data.RegisterDefaults(x.components); err != nil {
		return nil, fmt.Errorf("register data components: %w", err)
	}
	if x.tr, err = lang.Load(conf.Language.Default); err != nil {
		return nil, fmt.Errorf("load languages: %w", err)
	}
	catalogue, err := conf.Catalogue()
	if err != nil {
		return nil, fmt.Errorf("load planets: %w", err)
	}
	if x.store, err = conf.OpenStore(api.Context(), api.DataDirectory()); err != nil {
		return nil, fmt.Errorf("open teleporter store: %w", err)
	}
	closers = append(closers, x.store.Close)
	x.helper = teleporter.NewHelper(x.store)

	x.planets = planet.NewLoader(x.log, catalogue, worldOpener{log: x.log}, map[planet.Type]*world.World{
		planet.Normal: api.World(),
		planet.Nether: api.Nether(),
		planet.End:    api.End(),
	})
	closers = append(closers, x.planets.Close)
	x.executor = task.NewExecutor(task.ExecutorConfig{Logger: x.log})
	closers = append(closers, func() error { x.executor.Close(); return nil })

	frames := make(map[string]struct{}, len(conf.Teleporter.FrameBlocks))
	for _, name := range conf.Teleporter.FrameBlocks {
		frames[name] = struct{}{}
	}
	x.transfers = teleporter.TransfererConfig{
		Log:         x.log,
		Helper:      x.helper,
		Planets:     regions{loader: x.planets, frames: frames},
		Mover:       mover{x: x},
		Notifier:    x,
		Executor:    x.executor,
		MaxFrames:   conf.Teleporter.MaxFrames,
		Concurrency: conf.Teleporter.Concurrency,
		Go:          api.Go,
	}.New()

	x.effects = armor.NewTracker(x.log, applier{x: x})
	api.Go(func(ctx context.Context) { x.effects.Run(ctx, conf.RefreshInterval()) })
	api.Go(func(ctx context.Context) { task.Every(ctx, conf.RefreshInterval(), x.scanArmour) })

	x.unsub = append(x.unsub,
		x.interact.Subscribe(x.useRemote),
		api.OnPlayer(playerHandler{x: x}),
		api.OnInventory(inventoryHandler{x: x}),
	)
	api.RegisterCommand(command.NewTeleporter(x))
	api.RegisterCommand(command.NewTest(x, &x.testLock))

	x.log.Info("Galaxy enabled.", "planets", len(catalogue.All()), "driver", conf.Teleporter.Driver, "frameBlocks", conf.Teleporter.FrameBlocks)
	return x, nil
}

// Name ...
func (x *Extension) Name() string { return "Galaxy" }

// Version ...
func (x *Extension) Version() string { return "1.0.0" }

// Close stops the extension. The plugin context is already cancelled when
// Close is called, which stops the background tasks.
func (x *Extension) Close() error {
	for _, unsub := range slices.Backward(x.unsub) {
		unsub()
	}
	x.executor.Close()
	return errors.Join(x.planets.Close(), x.store.Close())
}

func (x *Extension) quit(id uuid.UUID) {
	x.sessions.Forget(id)
	x.effects.Forget(id)
}

// teleporterAt returns the teleporter anchored at pos in the world of tx.
func (x *Extension) teleporterAt(tx *world.Tx, pos cube.Pos) (teleporter.Teleporter, error) {
	p, ok := x.planets.PlanetOf(tx.World())
	if !ok {
		return teleporter.Teleporter{}, planet.ErrUnknown
	}
	return x.store.At(p.ID, pos)
}

// beneath returns the position of the block p stands on.
func beneath(p *player.Player) cube.Pos {
	return cube.PosFromVec3(p.Position()).Side(cube.FaceDown)
}

// Create creates a teleporter anchored at the block beneath p.
func (x *Extension) Create(tx *world.Tx, p *player.Player, name string, crossPlanet bool) (teleporter.Teleporter, error) {
	pl, ok := x.planets.PlanetOf(tx.World())
	if !ok {
		return teleporter.Teleporter{}, planet.ErrUnknown
	}
	t := teleporter.New(name, pl.ID, beneath(p), crossPlanet)
	if err := x.store.Put(t); err != nil {
		return teleporter.Teleporter{}, err
	}
	x.log.Info("Teleporter created.", "teleporter", t.ID, "name", t.Name, "planet", pl.Name, "pos", t.Position, "player", p.Name())
	return t, nil
}

// Remove removes the teleporter anchored at the block beneath p.
func (x *Extension) Remove(tx *world.Tx, p *player.Player) (teleporter.Teleporter, error) {
	t, err := x.teleporterAt(tx, beneath(p))
	if err != nil {
		return t, err
	}
	if err := x.store.Delete(t.ID); err != nil {
		return t, err
	}
	x.log.Info("Teleporter removed.", "teleporter", t.ID, "name", t.Name, "player", p.Name())
	return t, nil
}

// Teleporters returns every teleporter.
func (x *Extension) Teleporters() ([]teleporter.Teleporter, error) {
	return x.helper.All()
}

// Open opens the target selection of the teleporter beneath p.
func (x *Extension) Open(tx *world.Tx, p *player.Player) error {
	t, err := x.teleporterAt(tx, beneath(p))
	if err != nil {
		return err
	}
	return x.OpenTeleporter(p, t)
}

// GiveRemote gives p a remote opening the teleporter beneath p from
// anywhere.
func (x *Extension) GiveRemote(tx *world.Tx, p *player.Player) (teleporter.Teleporter, error) {
	t, err := x.teleporterAt(tx, beneath(p))
	if err != nil {
		return t, err
	}
	b := data.With(data.With(data.Bag{}, data.UUID, t.ID), data.ItemType, itemRemote)
	remote := withBag(item.NewStack(item.Compass{}, 1).WithCustomName(t.Name), b)
	if _, err := p.Inventory().AddItem(remote); err != nil {
		return t, fmt.Errorf("give remote: %w", err)
	}
	return t, nil
}

var _ command.Teleporters = (*Extension)(nil)
