package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/asrgate/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("component already registered")

// Registry owns component lifecycles. Components start in registration
// order and stop in reverse; StartAll may be called again to start late
// registrations.
type Registry struct {
	mu         sync.Mutex
	components []Component
	running    map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{running: make(map[string]bool)}
}

// Register appends c. Dependencies must be registered before dependents.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.components {
		if existing.Name() == c.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.Name())
		}
	}
	r.components = append(r.components, c)
	logger.Get("component").Debug("registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// StartAll starts every component that is not running yet. It returns at
// the first failure and leaves earlier components running for StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.Get("component")
	for _, c := range r.components {
		if r.running[c.Name()] {
			continue
		}
		if err := c.Start(ctx); err != nil {
			log.Error("start failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, c.Name()), err))
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.running[c.Name()] = true
		log.Info("started", startFields(c))
	}
	return nil
}

func startFields(c Component) map[string]any {
	fields := logger.Fields(logger.FieldComponent, c.Name())
	d, ok := c.(Describable)
	if !ok {
		return fields
	}
	desc := d.Describe()
	fields["type"] = desc.Type
	if desc.Details != "" {
		fields["details"] = desc.Details
	}
	if desc.Port != 0 {
		fields["port"] = desc.Port
	}
	return fields
}

// StopAll stops running components in reverse registration order, giving
// each at most DefaultStopTimeout. Every component is attempted; the
// failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.Get("component")
	var errs []error
	for i := len(r.components) - 1; i >= 0; i-- {
		c := r.components[i]
		if !r.running[c.Name()] {
			continue
		}
		delete(r.running, c.Name())

		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		err := c.Stop(stopCtx)
		cancel()
		if err != nil {
			log.Error("stop failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, c.Name()), err))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			continue
		}
		log.Info("stopped", logger.Fields(logger.FieldComponent, c.Name()))
	}
	return errors.Join(errs...)
}

// HealthAll reports every registered component, running or not.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	out := make([]Health, 0)
	for _, c := range r.All() {
		out = append(out, c.Health(ctx))
	}
	return out
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Component(nil), r.components...)
}
