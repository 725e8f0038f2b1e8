package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingWaiter struct {
	waits []time.Duration
}

func (r *recordingWaiter) Wait(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestPoll_FirstCheckImmediate(t *testing.T) {
	w := &recordingWaiter{}
	got, attempts, err := Poll(context.Background(), PollConfig{Interval: 2 * time.Second, MaxAttempts: 30, Wait: w.Wait},
		func(context.Context, int) (string, bool, error) {
			return "done", true, nil
		})
	if err != nil || got != "done" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if len(w.waits) != 0 {
		t.Errorf("expected no waits before the first check, got %v", w.waits)
	}
}

func TestPoll_WaitsBetweenChecks(t *testing.T) {
	w := &recordingWaiter{}
	_, attempts, err := Poll(context.Background(), PollConfig{Interval: 2 * time.Second, MaxAttempts: 30, Wait: w.Wait},
		func(_ context.Context, attempt int) (int, bool, error) {
			return attempt, attempt == 30, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 30 {
		t.Errorf("expected 30 attempts, got %d", attempts)
	}
	if len(w.waits) != 29 {
		t.Fatalf("expected 29 waits, got %d", len(w.waits))
	}
	for i, d := range w.waits {
		if d != 2*time.Second {
			t.Errorf("wait %d = %v, want 2s", i, d)
		}
	}
}

func TestPoll_Exhausted(t *testing.T) {
	w := &recordingWaiter{}
	calls := 0
	_, attempts, err := Poll(context.Background(), PollConfig{Interval: time.Second, MaxAttempts: 5, Wait: w.Wait},
		func(context.Context, int) (struct{}, bool, error) {
			calls++
			return struct{}{}, false, nil
		})
	if !errors.Is(err, ErrPollExhausted) {
		t.Errorf("expected ErrPollExhausted, got %v", err)
	}
	if calls != 5 || attempts != 5 {
		t.Errorf("expected 5 checks, got calls=%d attempts=%d", calls, attempts)
	}
}

func TestPoll_CheckErrorStops(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, attempts, err := Poll(context.Background(), PollConfig{MaxAttempts: 5, Wait: (&recordingWaiter{}).Wait},
		func(context.Context, int) (int, bool, error) {
			calls++
			if calls == 2 {
				return 0, false, boom
			}
			return 0, false, nil
		})
	if !errors.Is(err, boom) || attempts != 2 {
		t.Errorf("expected boom after 2 attempts, got %v after %d", err, attempts)
	}
}

func TestPoll_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, attempts, err := Poll(ctx, PollConfig{Interval: time.Hour, MaxAttempts: 5},
		func(context.Context, int) (int, bool, error) {
			calls++
			cancel()
			return 0, false, nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 || attempts != 1 {
		t.Errorf("expected a single check, got calls=%d attempts=%d", calls, attempts)
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled, got %v", err)
	}
	if err := Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled for zero wait on done context, got %v", err)
	}
}
