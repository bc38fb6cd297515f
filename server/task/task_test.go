package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	e := NewExecutor(ExecutorConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	t.Cleanup(e.Close)
	return e
}

func TestExecutorRunsInSubmissionOrder(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t)
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		if !e.Submit(func() { got = append(got, i) }) {
			t.Fatalf("Submit(%d) = false, want true", i)
		}
	}
	if err := e.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("job order = %v, want ascending", got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("ran %d jobs, want 10", len(got))
	}
}

func TestExecutorRecoversPanics(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t)
	e.Submit(func() { panic("boom") })
	ran := false
	if err := e.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Do() after panic error = %v", err)
	}
	if !ran {
		t.Fatalf("job after panic did not run")
	}
}

func TestExecutorClose(t *testing.T) {
	t.Parallel()

	e := NewExecutor(ExecutorConfig{})
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		e.Submit(func() { count.Add(1) })
	}
	e.Close()
	if got := count.Load(); got != 5 {
		t.Fatalf("jobs run before close = %d, want 5", got)
	}
	if e.Submit(func() {}) {
		t.Fatalf("Submit() after Close = true, want false")
	}
	if err := e.Do(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Do() after Close error = %v, want ErrClosed", err)
	}
}

func TestExecutorDoContextCancelled(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t)
	release := make(chan struct{})
	e.Submit(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := e.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() error = %v, want deadline exceeded", err)
	}
}

func TestKeyedLock(t *testing.T) {
	t.Parallel()

	var l KeyedLock[string]
	unlock, ok := l.TryLock("steve")
	if !ok {
		t.Fatalf("first TryLock failed")
	}
	if _, ok := l.TryLock("steve"); ok {
		t.Fatalf("second TryLock on held key succeeded")
	}
	if _, ok := l.TryLock("alex"); !ok {
		t.Fatalf("TryLock on independent key failed")
	}
	unlock()
	unlock()
	if l.Held("steve") {
		t.Fatalf("key still held after unlock")
	}
	if _, ok := l.TryLock("steve"); !ok {
		t.Fatalf("TryLock after unlock failed")
	}
}

func TestEvery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Every(ctx, time.Millisecond, func() {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Every did not stop after cancellation")
	}
	if got := calls.Load(); got < 3 {
		t.Fatalf("Every called fn %d times, want at least 3", got)
	}
}
