package bootstrap

import "context"

// ConfigureFunc builds what depends on started components, typically the
// gateway and the HTTP server, and registers it on app.
type ConfigureFunc[C Config] func(ctx context.Context, app *App[C]) error

// Hook runs during shutdown.
type Hook func(ctx context.Context) error

// OnConfigure appends a configure step. Steps run in order after the
// initially registered components have started.
func (a *App[C]) OnConfigure(fn ConfigureFunc[C]) {
	a.configure = append(a.configure, fn)
}

// OnStop registers a hook that runs once every component has stopped, such
// as flushing telemetry exporters.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.stopHooks = append(a.stopHooks, hooks...)
}
