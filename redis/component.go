package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/logger"
)

// Component manages the transcript cache connection. A disabled component
// starts without a client and always reports healthy.
type Component struct {
	cfg Config
	log *logger.Logger

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns an unstarted component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("redis")}
}

// Client returns the connected client, or nil when disabled or not started.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func (c *Component) Name() string { return "redis" }

// Start dials redis and fails when it does not answer PING.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("transcript cache disabled")
		return nil
	}
	client, err := New(c.cfg, c.log)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return err
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.log.Info("transcript cache connected", logger.Fields("addr", c.cfg.Addr))
	return nil
}

func (c *Component) Stop(context.Context) error {
	return c.Client().Close()
}

// Health degrades rather than fails on a lost connection; the gateway
// works without its cache.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	client := c.Client()
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case client == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	default:
		if err := client.Ping(ctx); err != nil {
			h.Status, h.Message = component.StatusDegraded, err.Error()
		}
	}
	return h
}

// Describe never includes the password.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("%s db=%d pool=%d", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize)
	}
	return component.Description{Name: "Transcript cache", Type: "redis", Details: details}
}
