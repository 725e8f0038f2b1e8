package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// App owns the process lifecycle: it starts the registered components, runs
// the configure steps that need them, waits for a stop signal and shuts
// everything down in reverse.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	shutdownTimeout time.Duration
	summaryOut      io.Writer
	configure       []ConfigureFunc[C]
	stopHooks       []Hook
}

// NewApp validates cfg and prepares an App. The global logger is initialized
// from cfg unless WithLogger is given.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	svc := cfg.GetServiceConfig()
	o := appOptions{shutdownTimeout: defaultShutdownTimeout, summaryOut: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		logger.Init(svc.Logging)
		o.logger = logger.GetGlobalLogger()
	}
	return &App[C]{
		Name:            svc.Name,
		Version:         svc.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          o.logger,
		shutdownTimeout: o.shutdownTimeout,
		summaryOut:      o.summaryOut,
	}, nil
}

// RegisterComponent appends c to the start order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Run starts the app and blocks until SIGINT, SIGTERM or ctx is done, then
// shuts down. A failed start still stops what was already running.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		if stopErr := a.Shutdown(ctx); stopErr != nil {
			a.Logger.Warn("cleanup after failed start", logger.ErrorFields("shutdown", stopErr))
		}
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	<-sigCtx.Done()
	stop()
	cause := "signal"
	if ctx.Err() != nil {
		cause = ctx.Err().Error()
	}
	a.Logger.Info("stop requested", map[string]any{"cause": cause})

	return a.Shutdown(ctx)
}

// Start brings up the registered components, runs the configure steps and
// starts whatever they registered. It logs but tolerates unhealthy components.
func (a *App[C]) Start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting", map[string]any{"service": a.Name, "version": a.Version})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	for i, fn := range a.configure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure step %d: %w", i+1, err)
		}
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start configured components: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("started with unhealthy components", logger.ErrorFields("ready_check", err))
	}
	writeSummary(a.summaryOut, a.Name, a.Version, time.Since(began), a.Components)
	return nil
}

// Shutdown stops components in reverse registration order, then runs the
// stop hooks. It gets its own deadline so a canceled ctx still drains.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down", map[string]any{"timeout": a.shutdownTimeout.String()})
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	for i, h := range a.stopHooks {
		if err := h(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop hook %d: %w", i+1, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("shutdown finished with errors", logger.ErrorFields("shutdown", err))
		return err
	}
	a.Logger.Info("shutdown complete")
	return nil
}

// ReadyCheck returns an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []error
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		if h.Message != "" {
			bad = append(bad, fmt.Errorf("%s is %s: %s", h.Name, h.Status, h.Message))
		} else {
			bad = append(bad, fmt.Errorf("%s is %s", h.Name, h.Status))
		}
	}
	return errors.Join(bad...)
}
