package testutil

import (
	"context"

	"github.com/kbukum/asrgate/component"
)

// TestComponent extends component.Component with testing-specific lifecycle
// methods used for isolation between test cases.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component.
	Snapshot(ctx context.Context) (any, error)

	// Restore restores a state returned by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
