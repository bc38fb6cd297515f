package planet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

func TestNewCatalogue(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := map[string]struct {
		planets []Planet
		ok      bool
	}{
		"empty":     {nil, true},
		"builtins":  {[]Planet{{ID: uuid.New(), Name: "Earth"}, {ID: uuid.New(), Name: "Hell", Type: Nether}}, true},
		"folders":   {[]Planet{{ID: uuid.New(), Name: "Earth"}, {ID: uuid.New(), Name: "Mars", Folder: "mars"}, {ID: uuid.New(), Name: "Venus", Folder: "venus"}}, true},
		"no id":     {[]Planet{{Name: "Earth"}}, false},
		"no name":   {[]Planet{{ID: uuid.New()}}, false},
		"bad type":  {[]Planet{{ID: uuid.New(), Name: "X", Type: 9}}, false},
		"dup id":    {[]Planet{{ID: id, Name: "A", Folder: "a"}, {ID: id, Name: "B", Folder: "b"}}, false},
		"dup name":  {[]Planet{{ID: uuid.New(), Name: "Mars", Folder: "a"}, {ID: uuid.New(), Name: "mars", Folder: "b"}}, false},
		"two earth": {[]Planet{{ID: uuid.New(), Name: "Earth"}, {ID: uuid.New(), Name: "Terra"}}, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalogue(tt.planets)
			if (err == nil) != tt.ok {
				t.Fatalf("NewCatalogue() error = %v, want ok = %v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Fatalf("NewCatalogue() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Type{"": Normal, "normal": Normal, "Nether": Nether, "the_end": End, "end": End} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseType("moon"); err == nil {
		t.Fatalf("ParseType(moon) error = nil")
	}
}

type fakeWorld struct{ name string }

type fakeOpener struct {
	opens  atomic.Int32
	closes atomic.Int32
	fail   bool
}

func (o *fakeOpener) Open(_ context.Context, p Planet) (*fakeWorld, error) {
	o.opens.Add(1)
	if o.fail {
		return nil, errors.New("corrupt level.dat")
	}
	return &fakeWorld{name: p.Folder}, nil
}

func (o *fakeOpener) Close(*fakeWorld) error {
	o.closes.Add(1)
	return nil
}

func TestLoader(t *testing.T) {
	t.Parallel()

	earth := Planet{ID: uuid.New(), Name: "Earth"}
	mars := Planet{ID: uuid.New(), Name: "Mars", Folder: "mars"}
	c, err := NewCatalogue([]Planet{earth, mars})
	if err != nil {
		t.Fatal(err)
	}
	overworld := &fakeWorld{name: "overworld"}
	o := &fakeOpener{}
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)), c, Opener[*fakeWorld](o), map[Type]*fakeWorld{Normal: overworld})

	w, err := l.Load(context.Background(), earth.ID)
	if err != nil || w != overworld {
		t.Fatalf("Load(earth) = %v, %v, want overworld", w, err)
	}

	var wg sync.WaitGroup
	worlds := make([]*fakeWorld, 8)
	for i := range worlds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worlds[i], _ = l.Load(context.Background(), mars.ID)
		}()
	}
	wg.Wait()
	for _, w := range worlds {
		if w == nil || w != worlds[0] {
			t.Fatalf("Load(mars) returned different worlds: %v", worlds)
		}
	}
	if n := o.opens.Load(); n != 1 {
		t.Fatalf("opened %d times, want 1", n)
	}
	if p, ok := l.PlanetOf(worlds[0]); !ok || p.ID != mars.ID {
		t.Fatalf("PlanetOf(mars world) = %v, %v", p, ok)
	}
	if p, ok := l.PlanetOf(overworld); !ok || p.ID != earth.ID {
		t.Fatalf("PlanetOf(overworld) = %v, %v", p, ok)
	}

	if _, err := l.Load(context.Background(), uuid.New()); !errors.Is(err, ErrUnknown) {
		t.Fatalf("Load(unknown) error = %v, want ErrUnknown", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if n := o.closes.Load(); n != 1 {
		t.Fatalf("closed %d worlds, want 1", n)
	}
}

func TestLoaderOpenFailure(t *testing.T) {
	t.Parallel()

	mars := Planet{ID: uuid.New(), Name: "Mars", Folder: "mars"}
	c, _ := NewCatalogue([]Planet{mars})
	o := &fakeOpener{fail: true}
	l := NewLoader[*fakeWorld](slog.New(slog.NewTextHandler(io.Discard, nil)), c, o, nil)

	if _, err := l.Load(context.Background(), mars.ID); err == nil {
		t.Fatalf("Load() error = nil, want open failure")
	}
	if _, ok := l.PlanetOf(nil); ok {
		t.Fatalf("PlanetOf(nil) = true")
	}
}

func TestLoaderMissingBuiltin(t *testing.T) {
	t.Parallel()

	hell := Planet{ID: uuid.New(), Name: "Hell", Type: Nether}
	c, _ := NewCatalogue([]Planet{hell})
	l := NewLoader[*fakeWorld](slog.New(slog.NewTextHandler(io.Discard, nil)), c, &fakeOpener{}, nil)
	if _, err := l.Load(context.Background(), hell.ID); err == nil {
		t.Fatalf("Load() error = nil, want missing world")
	}
}
