package observability

import "github.com/kbukum/asrgate/component"

// HealthStatus is the coarse state reported on /health.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

var statusNames = map[component.HealthStatus]HealthStatus{
	component.StatusHealthy:   HealthStatusUp,
	component.StatusDegraded:  HealthStatusDegraded,
	component.StatusUnhealthy: HealthStatusDown,
}

// Health is one component line of a ServiceHealth.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ServiceHealth is the /health response body.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// FromComponents reports the worst component status as the service status.
func FromComponents(service, version string, hs []component.Health) *ServiceHealth {
	sh := &ServiceHealth{
		Service: service,
		Version: version,
		Status:  up(component.Overall(hs)),
	}
	for _, h := range hs {
		sh.Components = append(sh.Components, Health{Name: h.Name, Status: up(h.Status), Message: h.Message})
	}
	return sh
}

// Up reports whether the service takes traffic; degraded still does.
func (sh *ServiceHealth) Up() bool { return sh.Status != HealthStatusDown }

func up(s component.HealthStatus) HealthStatus {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return HealthStatusUp
}
