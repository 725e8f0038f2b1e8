package resilience

import (
	"context"
	"time"
)

// WaitFunc blocks for d or until ctx is done. Tests substitute a recorder.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Wait is the real WaitFunc backed by a timer.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
