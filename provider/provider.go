package provider

import (
	"context"
	"errors"
)

// ErrNoneAvailable means every provider declined the request.
var ErrNoneAvailable = errors.New("provider: none available")

// Provider is a named backend that can say whether it is ready.
// IsAvailable must return by the time ctx is done.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}
