package signer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kbukum/asrgate/logger"
)

// Clock supplies signing timestamps.
type Clock interface {
	Now() time.Time
	// ForceResync re-measures the offset to the provider's clock.
	ForceResync(ctx context.Context) error
}

// SystemClock is a Clock with no skew correction.
type SystemClock struct{}

// Now returns the local time.
func (SystemClock) Now() time.Time { return time.Now() }

// ForceResync is a no-op.
func (SystemClock) ForceResync(context.Context) error { return nil }

// Probe returns the provider's current time.
type Probe func(ctx context.Context) (time.Time, error)

const (
	// DefaultMaxAge is how long a measured offset is trusted by Refresh.
	DefaultMaxAge = time.Hour
	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = 5 * time.Second
	// maxRetryAfter caps the default wait after a failed probe.
	maxRetryAfter = time.Minute
)

// SkewClockConfig configures a SkewClock.
type SkewClockConfig struct {
	Probe  Probe
	MaxAge time.Duration
	// ProbeTimeout bounds each probe. Defaults to DefaultProbeTimeout.
	ProbeTimeout time.Duration
	// RetryAfter is how long Refresh waits after a failed probe before
	// probing again. Defaults to min(MaxAge, 1m).
	RetryAfter time.Duration
	// Now is the local time source. Defaults to time.Now.
	Now func() time.Time
	Log *logger.Logger
}

// SkewClock is local time shifted by an offset measured against the
// provider. Mutable state is guarded by mu.
type SkewClock struct {
	probe        Probe
	maxAge       time.Duration
	probeTimeout time.Duration
	retryAfter   time.Duration
	local        func() time.Time
	log          *logger.Logger

	mu       sync.RWMutex
	offset   time.Duration
	syncedAt time.Time
	failedAt time.Time
}

// NewSkewClock creates a SkewClock. It starts with a zero offset and never
// probes until Refresh or ForceResync is called.
func NewSkewClock(cfg SkewClockConfig) *SkewClock {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = min(cfg.MaxAge, maxRetryAfter)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.Get("signer")
	}
	return &SkewClock{
		probe:        cfg.Probe,
		maxAge:       cfg.MaxAge,
		probeTimeout: cfg.ProbeTimeout,
		retryAfter:   cfg.RetryAfter,
		local:        cfg.Now,
		log:          cfg.Log,
	}
}

// Now returns the corrected time.
func (c *SkewClock) Now() time.Time {
	c.mu.RLock()
	off := c.offset
	c.mu.RUnlock()
	return c.local().Add(off)
}

// Offset returns the current correction.
func (c *SkewClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Refresh resyncs only when the last sync is older than MaxAge and no probe
// failed within RetryAfter.
func (c *SkewClock) Refresh(ctx context.Context) error {
	now := c.local()
	c.mu.RLock()
	fresh := !c.syncedAt.IsZero() && now.Sub(c.syncedAt) < c.maxAge
	backoff := !c.failedAt.IsZero() && now.Sub(c.failedAt) < c.retryAfter
	c.mu.RUnlock()
	if fresh || backoff {
		return nil
	}
	return c.ForceResync(ctx)
}

// ForceResync probes the provider and stores the new offset. On failure the
// previous offset is kept and the error returned.
func (c *SkewClock) ForceResync(ctx context.Context) error {
	if c.probe == nil {
		return errors.New("signer: skew clock has no probe")
	}
	pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	before := c.local()
	remote, err := c.probe(pctx)
	if err != nil {
		c.mu.Lock()
		c.failedAt = c.local()
		c.mu.Unlock()
		c.log.Warn("clock resync failed, keeping previous offset", logger.ErrorFields("resync", err))
		return err
	}
	after := c.local()
	// Attribute half the round trip to each direction.
	mid := before.Add(after.Sub(before) / 2)
	offset := remote.Sub(mid)

	c.mu.Lock()
	c.offset = offset
	c.syncedAt = after
	c.failedAt = time.Time{}
	c.mu.Unlock()

	c.log.Info("clock resynced", logger.Fields("offset_ms", offset.Milliseconds()))
	return nil
}
