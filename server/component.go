package server

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/asrgate/component"
)

// Component runs a Server under the bootstrap lifecycle.
type Component struct {
	srv *Server
}

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

func NewComponent(s *Server) *Component { return &Component{srv: s} }

func (c *Component) Name() string { return "http-server" }

func (c *Component) Start(ctx context.Context) error { return c.srv.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.srv.Stop(ctx) }

// Health is healthy once the listener is bound.
func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.srv.Started() {
		h.Status, h.Message = component.StatusUnhealthy, "HTTP server not started"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: c.srv.cfg.addr(),
		Port:    c.srv.cfg.Port,
	}
}

// probe paths sort after the API routes in the startup summary.
func isProbe(path string) bool { return path == "/health" || path == "/info" }

// Routes lists the engine's routes, API routes first, then by path and method.
func (c *Component) Routes() []component.Route {
	infos := c.srv.engine.Routes()
	slices.SortFunc(infos, func(a, b gin.RouteInfo) int {
		if pa, pb := isProbe(a.Path), isProbe(b.Path); pa != pb {
			if pa {
				return 1
			}
			return -1
		}
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})

	routes := make([]component.Route, len(infos))
	for i, r := range infos {
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)}
	}
	return routes
}

// formatHandlerName shortens Gin's handler path:
//
//	github.com/kbukum/asrgate/gateway.(*Handler).Transcribe-fm -> Handler.Transcribe
//	github.com/kbukum/asrgate/server/endpoint.Health.func1     -> health
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if strings.Contains(name, ".func") {
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		return strings.Join(parts[1:], ".")
	}
	return name
}
