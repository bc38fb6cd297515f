package teleporter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

type fakeRegion struct {
	planet   uuid.UUID
	frame    grid
	entities []Located
}

func (r *fakeRegion) Planet() uuid.UUID { return r.planet }

func (r *fakeRegion) View(_ context.Context, fn func(v View)) error {
	fn(r)
	return nil
}

func (r *fakeRegion) IsFrame(pos cube.Pos) bool { return r.frame[pos] }

func (r *fakeRegion) EntitiesWithin(lo, hi mgl64.Vec3) []Located {
	var in []Located
	for _, e := range r.entities {
		p := e.Position
		if p[0] >= lo[0] && p[0] < hi[0] && p[1] >= lo[1] && p[1] < hi[1] && p[2] >= lo[2] && p[2] < hi[2] {
			in = append(in, e)
		}
	}
	return in
}

type fakePlanets map[uuid.UUID]*fakeRegion

func (p fakePlanets) Region(_ context.Context, id uuid.UUID) (Region, error) {
	r, ok := p[id]
	if !ok {
		return nil, errors.New("planet not loaded")
	}
	return r, nil
}

type move struct {
	id     uuid.UUID
	to     uuid.UUID
	pos    mgl64.Vec3
	player bool
}

type recorder struct {
	mu       sync.Mutex
	moves    []move
	messages []string
}

func (r *recorder) TeleportPlayer(_ context.Context, id uuid.UUID, to Region, pos mgl64.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, move{id: id, to: to.Planet(), pos: pos, player: true})
	return nil
}

func (r *recorder) TransferEntity(id uuid.UUID, _, to Region, pos mgl64.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, move{id: id, to: to.Planet(), pos: pos})
	return nil
}

func (r *recorder) Notify(_ uuid.UUID, key string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, key)
}

// inline runs submitted work immediately.
type inline struct{ n int }

func (i *inline) Submit(fn func()) bool {
	i.n++
	fn()
	return true
}

type fixture struct {
	home, away *fakeRegion
	source     Teleporter
	target     Teleporter
	rec        *recorder
	exec       *inline
	tr         *Transferer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		home: &fakeRegion{planet: uuid.New()},
		away: &fakeRegion{planet: uuid.New()},
		rec:  &recorder{},
		exec: &inline{},
	}
	f.source = New("Source", f.home.planet, cube.Pos{0, 64, 0}, true)
	f.target = New("Target", f.away.planet, cube.Pos{50, 80, 50}, false)
	f.home.frame = square(f.source.Position, 3)
	f.away.frame = grid{f.target.Position.Side(cube.FaceEast): true, f.target.Position.Side(cube.FaceWest): true}

	s := NewMemoryStore()
	for _, tp := range []Teleporter{f.source, f.target} {
		if err := s.Put(tp); err != nil {
			t.Fatal(err)
		}
	}
	f.tr = TransfererConfig{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Helper:   NewHelper(s),
		Planets:  fakePlanets{f.home.planet: f.home, f.away.planet: f.away},
		Mover:    f.rec,
		Notifier: f.rec,
		Executor: f.exec,
	}.New()
	return f
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	player, cow, friend, outsider := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	f.home.entities = []Located{
		{Entity{ID: cow}, mgl64.Vec3{1.5, 65, 0.5}},
		{Entity{ID: player, Kind: KindPlayer}, mgl64.Vec3{0.5, 65, 0.5}},
		{Entity{ID: friend, Kind: KindPlayer}, mgl64.Vec3{-0.5, 65, -0.5}},
		{Entity{ID: outsider, Kind: KindPlayer}, mgl64.Vec3{5.5, 65, 0.5}},
	}

	done := false
	err := f.tr.Transfer(context.Background(), Request{Player: player, Source: f.source, Target: f.target.ID, Done: func() { done = true }})
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if !done {
		t.Fatalf("Done not called")
	}
	east, west := f.target.Position.Side(cube.FaceEast), f.target.Position.Side(cube.FaceWest)
	want := []move{
		{id: cow, to: f.away.planet, pos: Landing(east)},
		{id: friend, to: f.away.planet, pos: Landing(west), player: true},
		{id: player, to: f.away.planet, pos: Landing(f.target.Position), player: true},
	}
	if len(f.rec.moves) != len(want) {
		t.Fatalf("moves = %+v, want %+v", f.rec.moves, want)
	}
	for i := range want {
		if f.rec.moves[i] != want[i] {
			t.Fatalf("move %d = %+v, want %+v", i, f.rec.moves[i], want[i])
		}
	}
	if f.exec.n != 1 {
		t.Fatalf("executor ran %d jobs, want 1", f.exec.n)
	}
}

func TestTransferStale(t *testing.T) {
	t.Parallel()

	tests := map[string]func(f *fixture) Request{
		"missing target": func(f *fixture) Request {
			return Request{Player: uuid.New(), Source: f.source, Target: uuid.New()}
		},
		"self": func(f *fixture) Request {
			return Request{Player: uuid.New(), Source: f.source, Target: f.source.ID}
		},
		"cross planet not allowed": func(f *fixture) Request {
			src := f.source
			src.CrossPlanet = false
			return Request{Player: uuid.New(), Source: src, Target: f.target.ID}
		},
		"planet not loaded": func(f *fixture) Request {
			f.tr.conf.Planets = fakePlanets{f.home.planet: f.home}
			return Request{Player: uuid.New(), Source: f.source, Target: f.target.ID}
		},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			err := f.tr.Transfer(context.Background(), req(f))
			if !errors.Is(err, ErrStale) {
				t.Fatalf("Transfer() error = %v, want ErrStale", err)
			}
			if len(f.rec.moves) != 0 || len(f.rec.messages) != 0 {
				t.Fatalf("stale transfer moved %v and sent %v", f.rec.moves, f.rec.messages)
			}
		})
	}
}

func TestTransferFrameOverflow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.home.frame = square(f.source.Position, 9)
	err := f.tr.Transfer(context.Background(), Request{Player: uuid.New(), Source: f.source, Target: f.target.ID})
	if !errors.Is(err, ErrTooManyFramesThisSide) {
		t.Fatalf("Transfer() error = %v, want ErrTooManyFramesThisSide", err)
	}
	if len(f.rec.messages) != 1 || f.rec.messages[0] != MessageTooManyFramesThisSide {
		t.Fatalf("messages = %v", f.rec.messages)
	}

	f = newFixture(t)
	f.away.frame = square(f.target.Position, 9)
	err = f.tr.Transfer(context.Background(), Request{Player: uuid.New(), Source: f.source, Target: f.target.ID})
	if !errors.Is(err, ErrTooManyFramesThatSide) {
		t.Fatalf("Transfer() error = %v, want ErrTooManyFramesThatSide", err)
	}
	if len(f.rec.messages) != 1 || f.rec.messages[0] != MessageTooManyFramesThatSide || len(f.rec.moves) != 0 {
		t.Fatalf("messages = %v, moves = %v", f.rec.messages, f.rec.moves)
	}
}

func TestTransferNoTargetFrame(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.away.frame = grid{}
	player, pig := uuid.New(), uuid.New()
	f.home.entities = []Located{
		{Entity{ID: pig}, mgl64.Vec3{1.5, 65, 1.5}},
		{Entity{ID: player, Kind: KindPlayer}, mgl64.Vec3{0.5, 65, 0.5}},
	}
	if err := f.tr.Transfer(context.Background(), Request{Player: player, Source: f.source, Target: f.target.ID}); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	for _, m := range f.rec.moves {
		if m.pos != Landing(f.target.Position) {
			t.Fatalf("move %+v, want landing on anchor", m)
		}
	}
}

func TestStartBusy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var (
		wg      sync.WaitGroup
		pending []func(context.Context)
	)
	f.tr.conf.Go = func(fn func(context.Context)) { pending = append(pending, fn) }
	f.tr.sem = semaphore.NewWeighted(1)

	if err := f.tr.Start(Request{Player: uuid.New(), Source: f.source, Target: f.target.ID}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.tr.Start(Request{Player: uuid.New(), Source: f.source, Target: f.target.ID}); !errors.Is(err, ErrBusy) {
		t.Fatalf("Start() error = %v, want ErrBusy", err)
	}
	for _, fn := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(context.Background())
		}()
	}
	wg.Wait()
	if err := f.tr.Start(Request{Player: uuid.New(), Source: f.source, Target: f.target.ID}); err != nil {
		t.Fatalf("Start() after release error = %v", err)
	}
}
