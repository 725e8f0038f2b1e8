package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig is an exponential backoff policy. Zero fields take the
// values of DefaultRetryConfig, except Jitter and InitialBackoff.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64

	RetryIf func(error) bool
	// OnRetry runs before each wait; an error from it ends the loop.
	OnRetry func(ctx context.Context, attempt int, err error, backoff time.Duration) error
	Sleep   WaitFunc
}

// DefaultRetryConfig is three attempts starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf retries anything but an expired or cancelled context.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, RetryIf declines the error or
// MaxAttempts is spent, and returns the last error as is.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg = cfg.normalize()
	var (
		zero T
		err  error
	)
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return zero, cerr
		}
		var out T
		if out, err = fn(); err == nil {
			return out, nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.RetryIf(err) {
			return zero, err
		}

		wait := cfg.delay(attempt)
		if cfg.OnRetry != nil {
			if herr := cfg.OnRetry(ctx, attempt, err, wait); herr != nil {
				return zero, herr
			}
		}
		if werr := cfg.Sleep(ctx, wait); werr != nil {
			return zero, werr
		}
	}
}

func (cfg RetryConfig) normalize() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = def.BackoffFactor
	}
	cfg.InitialBackoff = max(cfg.InitialBackoff, 0)
	if cfg.RetryIf == nil {
		cfg.RetryIf = def.RetryIf
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Wait
	}
	return cfg
}

// delay is the wait after the given failed attempt:
// InitialBackoff * BackoffFactor^(attempt-1), jittered, at most MaxBackoff.
func (cfg RetryConfig) delay(attempt int) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if cfg.Jitter > 0 {
		d *= 1 + cfg.Jitter*(2*rand.Float64()-1)
	}
	d = min(d, float64(cfg.MaxBackoff))
	if d < 0 {
		return cfg.InitialBackoff
	}
	return time.Duration(d)
}
