package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/redis"
	"github.com/kbukum/asrgate/testutil"
)

var errNotStarted = errors.New("redis-test: not started")

// Component runs an in-memory redis (miniredis) with a connected client.
type Component struct {
	mu     sync.RWMutex
	mini   *miniredis.Miniredis
	client *redis.Client
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

func NewComponent() *Component { return &Component{} }

// Client is nil until Start.
func (c *Component) Client() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Server exposes miniredis, e.g. to FastForward TTLs.
func (c *Component) Server() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

func (c *Component) Name() string { return "redis-test" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mini != nil {
		return errors.New("redis-test: already started")
	}

	mini := miniredis.NewMiniRedis()
	if err := mini.Start(); err != nil {
		return fmt.Errorf("redis-test: %w", err)
	}
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		mini.Close()
		return err
	}
	c.mini, c.client = mini, client
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mini == nil {
		return nil
	}
	err := c.client.Close()
	c.mini.Close()
	c.mini = nil
	return err
}

func (c *Component) Health(context.Context) component.Health {
	if c.Server() == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset drops every key.
func (c *Component) Reset(context.Context) error {
	mini := c.Server()
	if mini == nil {
		return errNotStarted
	}
	mini.FlushAll()
	return nil
}

// entry is one string key in a snapshot.
type entry struct {
	value string
	ttl   time.Duration
}

// Snapshot copies every string key with its remaining TTL.
func (c *Component) Snapshot(context.Context) (any, error) {
	mini := c.Server()
	if mini == nil {
		return nil, errNotStarted
	}
	snap := make(map[string]entry)
	for _, key := range mini.Keys() {
		if v, err := mini.Get(key); err == nil {
			snap[key] = entry{value: v, ttl: mini.TTL(key)}
		}
	}
	return snap, nil
}

// Restore replaces the data set with a Snapshot result.
func (c *Component) Restore(_ context.Context, snapshot any) error {
	mini := c.Server()
	if mini == nil {
		return errNotStarted
	}
	snap, ok := snapshot.(map[string]entry)
	if !ok {
		return fmt.Errorf("redis-test: unexpected snapshot %T", snapshot)
	}
	mini.FlushAll()
	for key, e := range snap {
		if err := mini.Set(key, e.value); err != nil {
			return fmt.Errorf("redis-test: restore %s: %w", key, err)
		}
		if e.ttl > 0 {
			mini.SetTTL(key, e.ttl)
		}
	}
	return nil
}
