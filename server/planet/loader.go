package planet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Opener opens the world of a planet that has its own folder.
type Opener[W comparable] interface {
	Open(ctx context.Context, p Planet) (W, error)
	Close(w W) error
}

// Loader resolves planets to worlds. Built-in planets resolve to the worlds
// passed to NewLoader, other planets are opened once on first use and kept
// open until Close.
type Loader[W comparable] struct {
	log       *slog.Logger
	catalogue *Catalogue
	opener    Opener[W]
	builtin   map[Type]W

	group  singleflight.Group
	mu     sync.RWMutex
	opened map[uuid.UUID]W
	closed bool
}

// NewLoader returns a Loader for the planets in c.
func NewLoader[W comparable](log *slog.Logger, c *Catalogue, opener Opener[W], builtin map[Type]W) *Loader[W] {
	return &Loader[W]{
		log:       log.With("component", "planets"),
		catalogue: c,
		opener:    opener,
		builtin:   builtin,
		opened:    make(map[uuid.UUID]W),
	}
}

// Catalogue returns the catalogue the loader resolves.
func (l *Loader[W]) Catalogue() *Catalogue {
	return l.catalogue
}

// Load returns the world of the planet with the ID passed, opening it if
// needed. Concurrent loads of the same planet open it once.
func (l *Loader[W]) Load(ctx context.Context, id uuid.UUID) (W, error) {
	var zero W
	p, ok := l.catalogue.Get(id)
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrUnknown, id)
	}
	if p.Builtin() {
		w, ok := l.builtin[p.Type]
		if !ok {
			return zero, fmt.Errorf("no %v world for planet %q", p.Type, p.Name)
		}
		return w, nil
	}
	if w, ok := l.loaded(id); ok {
		return w, nil
	}

	ch := l.group.DoChan(id.String(), func() (any, error) {
		if w, ok := l.loaded(id); ok {
			return w, nil
		}
		w, err := l.opener.Open(context.WithoutCancel(ctx), p)
		if err != nil {
			return zero, fmt.Errorf("open planet %q: %w", p.Name, err)
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			_ = l.opener.Close(w)
			return zero, errLoaderClosed
		}
		l.opened[id] = w
		l.log.Info("Planet loaded.", "planet", p.Name, "folder", p.Folder)
		return w, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(W), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

var errLoaderClosed = errors.New("planet loader closed")

func (l *Loader[W]) loaded(id uuid.UUID) (W, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w, ok := l.opened[id]
	return w, ok
}

// PlanetOf returns the planet whose world is w.
func (l *Loader[W]) PlanetOf(w W) (Planet, bool) {
	for t, bw := range l.builtin {
		if bw == w {
			return l.catalogue.Builtin(t)
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, ow := range l.opened {
		if ow == w {
			return l.catalogue.Get(id)
		}
	}
	return Planet{}, false
}

// Close closes every world opened by the loader. Built-in worlds are left
// open.
func (l *Loader[W]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	var errs []error
	for id, w := range l.opened {
		if err := l.opener.Close(w); err != nil {
			errs = append(errs, fmt.Errorf("close planet %v: %w", l.catalogue.Name(id), err))
		}
		delete(l.opened, id)
	}
	return errors.Join(errs...)
}
