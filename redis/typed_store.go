package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrCorruptEntry marks a stored value that no longer decodes into the
// store's type. Load drops such entries.
var ErrCorruptEntry = errors.New("redis: corrupt entry")

// TypedStore keeps JSON-encoded values of one type under a key prefix.
type TypedStore[V any] struct {
	client *Client
	prefix string
}

// NewTypedStore returns a store whose keys are "prefix:key", or just "key"
// for an empty prefix.
func NewTypedStore[V any](client *Client, prefix string) *TypedStore[V] {
	return &TypedStore[V]{client: client, prefix: prefix}
}

// Key returns the redis key used for key.
func (s *TypedStore[V]) Key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Load returns the stored value, or nil without error when key is absent.
// An entry that fails to decode is deleted and reported as ErrCorruptEntry.
func (s *TypedStore[V]) Load(ctx context.Context, key string) (*V, error) {
	full := s.Key(key)
	raw, err := s.client.rdb.Get(ctx, full).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", full, err)
	}

	val := new(V)
	if err := json.Unmarshal(raw, val); err != nil {
		_ = s.client.rdb.Del(ctx, full).Err()
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptEntry, full, err)
	}
	return val, nil
}

// Save stores val for ttl. A zero ttl keeps it until deleted.
func (s *TypedStore[V]) Save(ctx context.Context, key string, val *V, ttl time.Duration) error {
	full := s.Key(key)
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", full, err)
	}
	if err := s.client.rdb.Set(ctx, full, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", full, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *TypedStore[V]) Delete(ctx context.Context, key string) error {
	full := s.Key(key)
	if err := s.client.rdb.Del(ctx, full).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", full, err)
	}
	return nil
}
