package testutil

import (
	"context"
	"sync"
	"time"
)

// RecordingWaiter records requested waits and returns immediately. Its Wait
// method matches resilience.WaitFunc.
type RecordingWaiter struct {
	mu    sync.Mutex
	waits []time.Duration
}

// Wait records d and returns ctx.Err() if the context is already done.
func (w *RecordingWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

// Waits returns a copy of the recorded durations.
func (w *RecordingWaiter) Waits() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

// Count returns how many waits were recorded.
func (w *RecordingWaiter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waits)
}

// Total returns the sum of all recorded waits.
func (w *RecordingWaiter) Total() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total time.Duration
	for _, d := range w.waits {
		total += d
	}
	return total
}
