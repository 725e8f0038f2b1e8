package testutil

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/server"
	"github.com/kbukum/asrgate/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errNotStarted = errors.New("http-test: not started")

// RouteFunc mounts routes on the engine, e.g. gateway.Handler.Register.
type RouteFunc func(r gin.IRoutes)

// Component serves routes through the production middleware chain on an
// httptest.Server bound to a random loopback port. ts is nil while stopped.
type Component struct {
	mu     sync.Mutex
	cfg    server.Config
	routes []RouteFunc
	srv    *server.Server
	ts     *httptest.Server
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent mounts routes on every fresh engine, so they survive Reset.
// Routes added through GinEngine do not.
func NewComponent(routes ...RouteFunc) *Component {
	c := &Component{cfg: server.Config{Host: "127.0.0.1"}, routes: routes}
	c.cfg.ApplyDefaults()
	c.srv = c.build()
	return c
}

// WithConfig replaces the server config. Call before Start.
func (c *Component) WithConfig(cfg server.Config) *Component {
	cfg.ApplyDefaults()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.srv = c.build()
	return c
}

func (c *Component) build() *server.Server {
	srv := server.New(c.cfg, logger.Nop())
	for _, mount := range c.routes {
		mount(srv.GinEngine())
	}
	srv.ApplyMiddleware()
	return srv
}

// GinEngine is the current engine, for ad-hoc routes.
func (c *Component) GinEngine() *gin.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.srv.GinEngine()
}

// BaseURL is "" while stopped.
func (c *Component) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

func (c *Component) Name() string { return "http-test" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		return errors.New("http-test: already started")
	}
	c.ts = httptest.NewServer(c.srv.Handler())
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		c.ts.Close()
		c.ts = nil
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: c.ts.URL}
}

// Reset serves a fresh engine with only the constructor routes.
func (c *Component) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return errNotStarted
	}
	c.ts.Close()
	c.srv = c.build()
	c.ts = httptest.NewServer(c.srv.Handler())
	return nil
}

// Snapshot holds nothing; the server is stateless between requests.
func (c *Component) Snapshot(context.Context) (any, error) { return nil, nil }

func (c *Component) Restore(context.Context, any) error { return nil }
