package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/asrgate/component"
)

var (
	_ component.Component   = (*Gateway)(nil)
	_ component.Describable = (*Gateway)(nil)
)

// Name implements component.Component.
func (g *Gateway) Name() string { return "gateway" }

// Start implements component.Component. The gateway holds no connections
// of its own.
func (g *Gateway) Start(context.Context) error { return nil }

// Stop waits for background releases, bounded by ctx.
func (g *Gateway) Stop(ctx context.Context) error {
	if err := g.Drain(ctx); err != nil {
		return fmt.Errorf("staged audio releases still running: %w", err)
	}
	return nil
}

// Health reports degraded when no recognizer is available. Requests then
// fail with CONFIG_ERROR but the service itself keeps running.
func (g *Gateway) Health(ctx context.Context) component.Health {
	availability := g.recognizers.Availability(ctx)
	var up []string
	for _, name := range g.recognizers.Names() {
		if availability[name] {
			up = append(up, name)
		}
	}
	if len(up) == 0 {
		return component.Health{
			Name:    g.Name(),
			Status:  component.StatusDegraded,
			Message: "no speech recognition provider available",
		}
	}
	return component.Health{
		Name:    g.Name(),
		Status:  component.StatusHealthy,
		Message: "providers: " + strings.Join(up, ", "),
	}
}

// Describe implements component.Describable.
func (g *Gateway) Describe() component.Description {
	return component.Description{
		Name: "Transcription gateway",
		Type: "gateway",
		Details: fmt.Sprintf("providers=%s max_audio=%d concurrency=%d cache=%t staging=%t",
			strings.Join(g.cfg.Providers, ","), g.cfg.MaxAudioSize, g.cfg.MaxConcurrentJobs,
			g.cache != nil, g.stager != nil),
	}
}
