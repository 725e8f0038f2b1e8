package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/storage"
	"github.com/kbukum/asrgate/testutil"
)

// BaseURL prefixes the locations returned by Put.
const BaseURL = "https://mem.storage.test/"

var errNotStarted = errors.New("storage-test: not started")

type object struct {
	data        []byte
	contentType string
}

// snapshot is the state captured by Snapshot.
type snapshot map[string]object

// Component is an in-memory storage backend that records deletes and can
// be told to fail. The object map is nil while stopped.
type Component struct {
	mu      sync.Mutex
	objects map[string]object
	deletes []string
	putErr  error
	delErr  error
	signed  int
}

var (
	_ component.Component       = (*Component)(nil)
	_ testutil.TestComponent    = (*Component)(nil)
	_ storage.Storage           = (*Component)(nil)
	_ storage.SignedURLProvider = (*Component)(nil)
)

func NewComponent() *Component { return &Component{} }

// Storage is nil until Start.
func (c *Component) Storage() storage.Storage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return nil
	}
	return c
}

// FailPuts makes Put return err until cleared with nil.
func (c *Component) FailPuts(err error) {
	c.mu.Lock()
	c.putErr = err
	c.mu.Unlock()
}

// FailDeletes makes Delete return err until cleared with nil. Failed
// deletes are still recorded.
func (c *Component) FailDeletes(err error) {
	c.mu.Lock()
	c.delErr = err
	c.mu.Unlock()
}

// Keys lists stored keys in order.
func (c *Component) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.objects))
}

// Object returns a copy of the stored bytes and their content type.
func (c *Component) Object(key string) ([]byte, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.objects[key]
	return bytes.Clone(o.data), o.contentType, ok
}

// Deletes lists every Delete argument, in call order.
func (c *Component) Deletes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.deletes)
}

// SignedCalls reports whether SignedURL was used.
func (c *Component) SignedCalls() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signed > 0
}

func (c *Component) Name() string { return "storage-test" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects != nil {
		return errors.New("storage-test: already started")
	}
	c.objects = make(map[string]object)
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	c.objects = nil
	c.mu.Unlock()
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.objects == nil {
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	}
	return h
}

// Reset drops objects, recorded deletes and injected failures.
func (c *Component) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return errNotStarted
	}
	c.objects = make(map[string]object)
	c.deletes = nil
	c.putErr, c.delErr, c.signed = nil, nil, 0
	return nil
}

func (c *Component) Snapshot(context.Context) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return nil, errNotStarted
	}
	return snapshot(maps.Clone(c.objects)), nil
}

func (c *Component) Restore(_ context.Context, snap any) error {
	s, ok := snap.(snapshot)
	if !ok {
		return fmt.Errorf("storage-test: cannot restore %T", snap)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return errNotStarted
	}
	c.objects = maps.Clone(s)
	return nil
}

func (c *Component) Put(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("storage-test: read upload: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.objects == nil:
		return "", errNotStarted
	case c.putErr != nil:
		return "", c.putErr
	}
	c.objects[key] = object{data: data, contentType: contentType}
	return BaseURL + key, nil
}

// Delete accepts a key or a location returned by Put.
func (c *Component) Delete(_ context.Context, keyOrURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, keyOrURL)
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.objects, strings.TrimPrefix(keyOrURL, BaseURL))
	return nil
}

func (c *Component) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.objects[key]
	return ok, nil
}

func (c *Component) URL(_ context.Context, key string) (string, error) {
	return BaseURL + key, nil
}

func (c *Component) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	c.mu.Lock()
	c.signed++
	c.mu.Unlock()
	return fmt.Sprintf("%s%s?expires=%d&signature=test", BaseURL, key, int(ttl.Seconds())), nil
}
