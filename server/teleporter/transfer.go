package teleporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrStale is returned when a selected target no longer exists, is no
	// longer reachable or its planet cannot be loaded. It is never reported
	// to the player.
	ErrStale = errors.New("stale teleporter selection")
	// ErrTooManyFramesThisSide is returned when the frame of the source
	// teleporter exceeds the frame budget.
	ErrTooManyFramesThisSide = errors.New("too many frame blocks on this side")
	// ErrTooManyFramesThatSide is returned when the frame of the target
	// teleporter exceeds the frame budget.
	ErrTooManyFramesThatSide = errors.New("too many frame blocks on that side")
	// ErrBusy is returned by Start when too many transfers are running.
	ErrBusy = errors.New("too many transfers in progress")
)

// Translation keys of the messages sent to the activating player.
const (
	MessageTooManyFramesThisSide = "Respond.TooMuchFramesThisSide"
	MessageTooManyFramesThatSide = "Respond.TooMuchFramesThatSide"
	MessageBusy                  = "Respond.Busy"
)

// Located is an entity together with the position of its feet.
type Located struct {
	Entity
	Position mgl64.Vec3
}

// View is a consistent view of a region, valid only while the function passed
// to Region.View runs.
type View interface {
	FrameView
	// EntitiesWithin returns the entities with their feet inside the box
	// spanned by min and max.
	EntitiesWithin(min, max mgl64.Vec3) []Located
}

// Region is a loaded planet.
type Region interface {
	Planet() uuid.UUID
	// View runs fn on the goroutine owning the region and returns once fn has
	// returned.
	View(ctx context.Context, fn func(v View)) error
}

// Planets loads the region of a planet, loading the planet if needed.
type Planets interface {
	Region(ctx context.Context, planet uuid.UUID) (Region, error)
}

// Mover moves entities between regions.
type Mover interface {
	// TeleportPlayer moves a player to pos in the region passed. It may be
	// called from any goroutine.
	TeleportPlayer(ctx context.Context, player uuid.UUID, to Region, pos mgl64.Vec3) error
	// TransferEntity moves a non-player entity. It is only called from the
	// executor.
	TransferEntity(entity uuid.UUID, from, to Region, pos mgl64.Vec3) error
}

// Notifier sends a translated message to a player.
type Notifier interface {
	Notify(player uuid.UUID, key string, args ...any)
}

// Submitter queues work on the goroutine that owns world mutation.
type Submitter interface {
	Submit(fn func()) bool
}

// Request is a transfer started by a player selecting a target teleporter.
type Request struct {
	Player uuid.UUID
	Source Teleporter
	Target uuid.UUID
	// Done is called after the player has been delivered.
	Done func()
}

// TransfererConfig holds the collaborators of a Transferer.
type TransfererConfig struct {
	Log      *slog.Logger
	Helper   *Helper
	Planets  Planets
	Mover    Mover
	Notifier Notifier
	// Executor runs the transfers of non-player entities.
	Executor Submitter
	// MaxFrames is the frame budget of each side. It defaults to 64.
	MaxFrames int
	// Concurrency bounds the transfers started with Start. It defaults to 16.
	Concurrency int64
	// Go runs fn in the background. It defaults to starting a goroutine.
	Go func(fn func(ctx context.Context))
}

// New creates a Transferer using the configuration.
func (conf TransfererConfig) New() *Transferer {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.MaxFrames <= 0 {
		conf.MaxFrames = 64
	}
	if conf.Concurrency <= 0 {
		conf.Concurrency = 16
	}
	if conf.Go == nil {
		conf.Go = func(fn func(ctx context.Context)) { go fn(context.Background()) }
	}
	return &Transferer{conf: conf, log: conf.Log.With("component", "transfer"), sem: semaphore.NewWeighted(conf.Concurrency)}
}

// Transferer moves the entities standing on one teleporter frame to another.
type Transferer struct {
	conf TransfererConfig
	log  *slog.Logger
	sem  *semaphore.Weighted
}

// Start runs Transfer in the background. It returns ErrBusy without starting
// anything if too many transfers are running.
func (t *Transferer) Start(req Request) error {
	if !t.sem.TryAcquire(1) {
		t.conf.Notifier.Notify(req.Player, MessageBusy)
		return ErrBusy
	}
	t.conf.Go(func(ctx context.Context) {
		defer t.sem.Release(1)
		if err := t.Transfer(ctx, req); err != nil {
			t.log.Debug("Transfer aborted.", "player", req.Player, "source", req.Source.ID, "target", req.Target, "error", err)
		}
	})
	return nil
}

// Transfer moves the entities on the frame of req.Source to the frame of the
// target. The activating player is delivered to the anchor of the target
// last.
func (t *Transferer) Transfer(ctx context.Context, req Request) error {
	target, err := t.conf.Helper.Get(req.Target)
	if err != nil {
		return fmt.Errorf("%w: get target: %w", ErrStale, err)
	}
	if !CanReach(req.Source, target) {
		return fmt.Errorf("%w: %v cannot reach %v", ErrStale, req.Source.ID, target.ID)
	}
	from, err := t.conf.Planets.Region(ctx, req.Source.Planet)
	if err != nil {
		return fmt.Errorf("%w: load source planet: %w", ErrStale, err)
	}
	to, err := t.conf.Planets.Region(ctx, target.Planet)
	if err != nil {
		return fmt.Errorf("%w: load target planet: %w", ErrStale, err)
	}

	var (
		ok       bool
		entities []Entity
	)
	err = from.View(ctx, func(v View) {
		var frame Frame
		if frame, ok = SearchFrame(v, req.Source.Position, t.conf.MaxFrames); ok {
			entities = standing(v, frame)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: view source: %w", ErrStale, err)
	}
	if !ok {
		t.conf.Notifier.Notify(req.Player, MessageTooManyFramesThisSide)
		return ErrTooManyFramesThisSide
	}

	var dest Frame
	err = to.View(ctx, func(v View) {
		dest, ok = SearchFrame(v, target.Position, t.conf.MaxFrames)
	})
	if err != nil {
		return fmt.Errorf("%w: view target: %w", ErrStale, err)
	}
	if !ok {
		t.conf.Notifier.Notify(req.Player, MessageTooManyFramesThatSide)
		return ErrTooManyFramesThatSide
	}

	placements := Assign(req.Player, entities, dest.Cells(), target.Position)
	for _, p := range placements {
		if p.Activator {
			continue
		}
		t.deliver(ctx, from, to, p)
	}
	activator := placements[len(placements)-1]
	if err := t.conf.Mover.TeleportPlayer(ctx, activator.Entity.ID, to, activator.Position); err != nil {
		return fmt.Errorf("teleport activator: %w", err)
	}
	t.log.Info("Teleported.", "player", req.Player, "source", req.Source.Name, "target", target.Name, "passengers", len(placements)-1)
	if req.Done != nil {
		req.Done()
	}
	return nil
}

func (t *Transferer) deliver(ctx context.Context, from, to Region, p Placement) {
	if p.Entity.Kind == KindPlayer {
		if err := t.conf.Mover.TeleportPlayer(ctx, p.Entity.ID, to, p.Position); err != nil {
			t.log.Debug("Passenger not teleported.", "entity", p.Entity.ID, "error", err)
		}
		return
	}
	queued := t.conf.Executor.Submit(func() {
		if err := t.conf.Mover.TransferEntity(p.Entity.ID, from, to, p.Position); err != nil {
			t.log.Debug("Entity not transferred.", "entity", p.Entity.ID, "error", err)
		}
	})
	if !queued {
		t.log.Debug("Entity transfer dropped.", "entity", p.Entity.ID)
	}
}

// standing returns the entities standing on frame, in the order v returns
// them.
func standing(v View, frame Frame) []Entity {
	lo, hi := frame.Bounds()
	var entities []Entity
	for _, e := range v.EntitiesWithin(lo, hi) {
		if frame.Supports(e.Position) {
			entities = append(entities, e.Entity)
		}
	}
	return entities
}
