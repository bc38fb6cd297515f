package task

import (
	"context"
	"time"
)

// Every calls fn every interval until ctx is cancelled. The first call happens
// one interval after Every is called. Every blocks, so it is usually started
// on its own goroutine.
func Every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 || fn == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
