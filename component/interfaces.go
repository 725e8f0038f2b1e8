package component

import "context"

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the /health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a piece of infrastructure the Registry starts before the
// server accepts traffic and stops after it drains. Names are unique
// within a Registry.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description feeds the startup summary. It must not carry credentials.
type Description struct {
	Name    string // display name; Name() when empty
	Type    string // "storage", "redis", "server", ...
	Details string // e.g. "bucket=audio-1250000000"
	Port    int
}

// Describable components report their configuration at startup.
type Describable interface {
	Describe() Description
}

var severity = map[HealthStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

// Overall is the worst status in hs, or healthy when hs is empty.
func Overall(hs []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range hs {
		if severity[h.Status] > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}

// Route is one HTTP route in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that serve HTTP.
type RouteProvider interface {
	Routes() []Route
}
