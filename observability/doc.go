// Package observability provides OpenTelemetry tracing and metrics for the
// gateway.
//
// Setup:
//
//	shutdown, err := observability.Init(ctx, cfg.Observability, "asrgate", version.Short(), env)
//	defer shutdown(ctx)
//
// Tracing:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("asrgate"))
//	metrics.RecordTranscription(ctx, "tencent", "succeeded", duration)
//
// Health:
//
//	health := observability.FromComponents("asrgate", version.Short(), registry.HealthAll(ctx))
package observability
