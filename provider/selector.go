package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Selector chooses among the registered providers.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// PrioritySelector returns the first available provider in Priority,
// then in name order among the ones Priority leaves out. Names in
// Priority that are not registered are skipped.
type PrioritySelector[T Provider] struct {
	Priority []string
}

func (s *PrioritySelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	order := slices.Clone(s.Priority)
	for _, name := range slices.Sorted(maps.Keys(providers)) {
		if !slices.Contains(s.Priority, name) {
			order = append(order, name)
		}
	}
	for _, name := range order {
		p, ok := providers[name]
		if ok && p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w (tried %v)", ErrNoneAvailable, order)
}
