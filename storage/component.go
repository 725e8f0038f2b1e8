package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/logger"
)

// healthKey is probed with URL; backends that resolve URLs locally answer
// without a round trip.
const healthKey = ".health"

// Component owns one configured backend, e.g. "object-store" or "temp-blob".
// A disabled component starts fine and its Storage stays nil.
type Component struct {
	name        string
	cfg         Config
	providerCfg any
	log         *logger.Logger

	mu      sync.RWMutex
	backend Storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(name string, cfg Config, providerCfg any, log *logger.Logger) *Component {
	return &Component{name: name, cfg: cfg, providerCfg: providerCfg, log: log.WithComponent(name)}
}

func (c *Component) Name() string { return c.name }

// Storage is the running backend, nil before Start or when disabled.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend
}

// IsAvailable reports whether a backend is running.
func (c *Component) IsAvailable(context.Context) bool { return c.Storage() != nil }

func (c *Component) Start(context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage disabled", logger.Fields("provider", c.cfg.Provider))
		return nil
	}
	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.mu.Lock()
	c.backend = s
	c.mu.Unlock()
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	c.backend = nil
	c.mu.Unlock()
	return nil
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.name, Status: component.StatusHealthy}
	s := c.Storage()
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case s == nil:
		h.Status, h.Message = component.StatusUnhealthy, "storage not initialized"
	default:
		if _, err := s.URL(ctx, healthKey); err != nil && !stderrors.Is(err, ErrNotFound) {
			h.Status, h.Message = component.StatusUnhealthy, "health probe failed: "+err.Error()
		}
	}
	return h
}

func (c *Component) Describe() component.Description {
	d := component.Description{Name: c.name, Type: "storage", Details: "disabled"}
	if !c.cfg.Enabled {
		return d
	}
	d.Details = "provider=" + c.cfg.Provider
	if b, ok := c.providerCfg.(BucketDescriber); ok && b.GetBucket() != "" {
		d.Details += " bucket=" + b.GetBucket()
	}
	return d
}

// BucketDescriber is implemented by provider configs addressed by bucket.
type BucketDescriber interface {
	GetBucket() string
}
