// Command asrgate serves the speech transcription gateway over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kbukum/asrgate/bootstrap"
	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/config"
	"github.com/kbukum/asrgate/gateway"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/observability"
	"github.com/kbukum/asrgate/redis"
	"github.com/kbukum/asrgate/server"
	"github.com/kbukum/asrgate/server/middleware"
	"github.com/kbukum/asrgate/staging"
	"github.com/kbukum/asrgate/storage"
	"github.com/kbukum/asrgate/transcription"
	"github.com/kbukum/asrgate/transcription/tencent"
	"github.com/kbukum/asrgate/transcription/whisper"
)

const (
	objectStoreName = "object-store"
	tempBlobName    = "temp-blob"
	cachePrefix     = "asr:transcript"
)

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "asrgate: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), &cfg); err != nil {
		logger.Error("asrgate stopped", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	flush, err := initSentry(cfg.Sentry, cfg.Environment, app.Version)
	if err != nil {
		app.Logger.Warn("sentry disabled", logger.ErrorFields("sentry_init", err))
	}
	defer flush()

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability, app.Name, app.Version, cfg.Environment)
	if err != nil {
		return err
	}
	app.OnStop(bootstrap.Hook(shutdownTelemetry))

	if err := cfg.COS.CredentialWarning(); err != nil {
		app.Logger.Warn("object store credentials incomplete, staging falls back to the temp blob service",
			logger.ErrorFields("cos_credentials", err))
	}
	objects := storage.NewComponent(objectStoreName,
		storage.Config{Provider: storage.ProviderS3, Enabled: cfg.COS.Configured()}, &cfg.COS, app.Logger)
	temp := storage.NewComponent(tempBlobName,
		storage.Config{Provider: storage.ProviderBlob, Enabled: cfg.Blob.Configured()}, &cfg.Blob, app.Logger)
	cache := redis.NewComponent(cfg.Redis, app.Logger)
	for _, c := range []component.Component{objects, temp, cache} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		gw, err := newGateway(a.Cfg, objects, temp, cache)
		if err != nil {
			return err
		}

		metrics, err := observability.NewMetrics(observability.Meter(a.Name))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		srv := server.New(a.Cfg.Server, a.Logger)
		srv.ApplyMiddleware(middleware.Tracing(), middleware.Metrics(metrics, a.Name))
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll)
		gateway.NewHandler(gw).Register(srv.GinEngine())

		// The server stops before the gateway drains its releases.
		if err := a.RegisterComponent(gw); err != nil {
			return err
		}
		return a.RegisterComponent(server.NewComponent(srv))
	})

	return app.Run(ctx)
}

// newGateway wires recognizers, staging and the optional cache. It runs
// after the storage and redis components have started.
func newGateway(cfg *Config, objects, temp *storage.Component, cache *redis.Component) (*gateway.Gateway, error) {
	recognizers := transcription.NewManager(cfg.Gateway.Providers)

	tc, err := tencent.NewClient(cfg.Tencent)
	if err != nil {
		return nil, err
	}
	recognizers.Add(tc)

	if cfg.Whisper.Enabled {
		wp, err := whisper.NewProvider(cfg.Whisper)
		if err != nil {
			return nil, err
		}
		recognizers.Add(wp)
	}

	opts := []gateway.Option{
		gateway.WithStager(staging.NewUploader(cfg.Staging, objects.Storage(), temp.Storage())),
	}
	if client := cache.Client(); client != nil {
		opts = append(opts, gateway.WithCache(redis.NewTypedStore[transcription.Result](client, cachePrefix)))
	}
	return gateway.New(cfg.Gateway, recognizers, opts...), nil
}

// initSentry installs the global sentry client when a DSN is configured.
// The returned func flushes buffered events.
func initSentry(cfg SentryConfig, environment, release string) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
