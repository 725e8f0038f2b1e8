package resilience

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBulkheadFull means every slot was taken and MaxWait is zero.
	ErrBulkheadFull = errors.New("bulkhead is full")
	// ErrBulkheadTimeout means no slot freed up within MaxWait.
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig sizes a Bulkhead.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int           // defaults to 10
	MaxWait       time.Duration // queueing time; zero rejects immediately
	// OnReject sees ErrBulkheadFull, ErrBulkheadTimeout or the context error.
	OnReject func(name string, reason error)
}

// Bulkhead is a counting semaphore around calls into one dependency.
type Bulkhead struct {
	name     string
	maxWait  time.Duration
	onReject func(string, error)
	sem      chan struct{}
}

func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	return &Bulkhead{
		name:     cfg.Name,
		maxWait:  cfg.MaxWait,
		onReject: cfg.OnReject,
		sem:      make(chan struct{}, positive(cfg.MaxConcurrent, 10)),
	}
}

// Execute is Do for calls without a result.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	_, err := Do(ctx, b, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// Do holds a slot of b for the duration of fn.
func Do[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	if err := b.enter(ctx); err != nil {
		if b.onReject != nil {
			b.onReject(b.name, err)
		}
		var zero T
		return zero, err
	}
	defer b.leave()
	return fn()
}

func (b *Bulkhead) enter(ctx context.Context) error {
	if b.tryEnter() {
		return nil
	}
	if b.maxWait <= 0 {
		return ErrBulkheadFull
	}
	ctx, cancel := context.WithTimeoutCause(ctx, b.maxWait, ErrBulkheadTimeout)
	defer cancel()
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		if cause := context.Cause(ctx); errors.Is(cause, ErrBulkheadTimeout) {
			return ErrBulkheadTimeout
		}
		return ctx.Err()
	}
}

func (b *Bulkhead) tryEnter() bool {
	select {
	case b.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (b *Bulkhead) leave() { <-b.sem }

// InUse is the number of held slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Capacity is the slot count.
func (b *Bulkhead) Capacity() int { return cap(b.sem) }
