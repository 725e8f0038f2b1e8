package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/provider"
)

// ErrDisabled is returned by New for a config with Enabled unset.
var ErrDisabled = errors.New("redis: disabled")

// Client is a pooled go-redis connection. It is safe for concurrent use and
// Close may be called more than once.
type Client struct {
	rdb    *goredis.Client
	log    *logger.Logger
	closed atomic.Bool
}

var _ provider.Provider = (*Client)(nil)

// New builds a client without dialing; go-redis connects lazily.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	log.Debug("redis client created", logger.Fields("addr", cfg.Addr, "db", cfg.DB, "pool_size", cfg.PoolSize))
	return &Client{rdb: goredis.NewClient(cfg.options()), log: log}, nil
}

// Name returns "redis".
func (c *Client) Name() string { return "redis" }

// IsAvailable reports whether the client is open and answers PING.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return !c.closed.Load() && c.Ping(ctx) == nil
}

// Ping round-trips a PING.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Redis exposes the go-redis client.
func (c *Client) Redis() *goredis.Client { return c.rdb }

// Close releases the pool.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.log.Debug("redis client closed")
	return c.rdb.Close()
}
