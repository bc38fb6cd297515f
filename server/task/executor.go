package task

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrClosed is returned when work is submitted to an Executor that was closed.
var ErrClosed = errors.New("executor closed")

// ExecutorConfig holds the options used to create an Executor.
type ExecutorConfig struct {
	Logger *slog.Logger
	// QueueSize is the amount of jobs that may wait for the executor before
	// Submit blocks. Defaults to 256.
	QueueSize int
}

// Executor runs submitted functions one at a time on a single goroutine. It is
// the hop used for work that must not run concurrently with other world
// mutations issued by the extension.
type Executor struct {
	log   *slog.Logger
	queue chan func()

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// NewExecutor creates an Executor and starts its goroutine.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	e := &Executor{
		log:     cfg.Logger,
		queue:   make(chan func(), cfg.QueueSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.queue:
			e.run(fn)
		case <-e.closing:
			// Drain what was accepted before Close was called.
			for {
				select {
				case fn := <-e.queue:
					e.run(fn)
				default:
					return
				}
			}
		}
	}
}

func (e *Executor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Executor job panicked.", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Submit queues fn for execution and returns immediately. False is returned if
// the executor was closed.
func (e *Executor) Submit(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-e.closing:
		return false
	default:
	}
	select {
	case e.queue <- fn:
		return true
	case <-e.closing:
		return false
	}
}

// Do queues fn and waits until it has run or ctx is cancelled.
func (e *Executor) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !e.Submit(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-e.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs the jobs that were already queued and
// waits for the executor goroutine to exit.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		close(e.closing)
	})
	<-e.done
}
