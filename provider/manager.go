package provider

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/asrgate/logger"
)

// Manager holds named providers and asks its Selector which one serves
// the next request. Adding a provider under an existing name replaces it.
type Manager[T Provider] struct {
	selector Selector[T]
	log      *logger.Logger

	mu     sync.RWMutex
	byName map[string]T
}

// NewManager uses selector, or name order when selector is nil.
func NewManager[T Provider](selector Selector[T]) *Manager[T] {
	if selector == nil {
		selector = &PrioritySelector[T]{}
	}
	return &Manager[T]{selector: selector, log: logger.Get("provider"), byName: map[string]T{}}
}

func (m *Manager[T]) Add(p T) {
	m.mu.Lock()
	m.byName[p.Name()] = p
	m.mu.Unlock()
	m.log.Info("provider added", logger.Fields(logger.FieldProvider, p.Name()))
}

// Get asks the selector for a provider.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	return m.selector.Select(ctx, m.snapshot())
}

// Lookup finds a provider by name, available or not.
func (m *Manager[T]) Lookup(name string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byName[name]
	return p, ok
}

// Names lists the providers alphabetically.
func (m *Manager[T]) Names() []string {
	return slices.Sorted(maps.Keys(m.snapshot()))
}

// Availability probes every provider.
func (m *Manager[T]) Availability(ctx context.Context) map[string]bool {
	out := map[string]bool{}
	for name, p := range m.snapshot() {
		out[name] = p.IsAvailable(ctx)
	}
	return out
}

func (m *Manager[T]) snapshot() map[string]T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.byName)
}
