package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrPollExhausted is returned when no attempt reached a terminal state.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// PollConfig bounds a status-polling loop.
type PollConfig struct {
	// Interval is the fixed wait between two consecutive checks.
	Interval time.Duration
	// MaxAttempts caps the number of checks, the first included.
	MaxAttempts int
	// Wait is used between checks. Defaults to Wait.
	Wait WaitFunc
}

// Poll calls check until it reports done, returns an error, or MaxAttempts
// checks have run. The first check runs immediately; Interval elapses before
// each later one, so a budget of N checks waits N-1 times. Checks never
// overlap. The number of checks performed is always returned.
func Poll[T any](ctx context.Context, cfg PollConfig, check func(ctx context.Context, attempt int) (T, bool, error)) (T, int, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Wait == nil {
		cfg.Wait = Wait
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := cfg.Wait(ctx, cfg.Interval); err != nil {
				return zero, attempt - 1, err
			}
		} else if err := ctx.Err(); err != nil {
			return zero, 0, err
		}

		result, done, err := check(ctx, attempt)
		if err != nil {
			return result, attempt, err
		}
		if done {
			return result, attempt, nil
		}
	}
	return zero, cfg.MaxAttempts, ErrPollExhausted
}
