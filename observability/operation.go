package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/asrgate/logger"
)

// Operation is one timed unit of work and the span that covers it.
type Operation struct {
	name    string
	started time.Time
	span    trace.Span
	metrics *Metrics
}

// StartOperation opens spanName for the operation called name. metrics may
// be nil.
func StartOperation(ctx context.Context, spanName, name string, metrics *Metrics) (context.Context, *Operation) {
	attrs := []attribute.KeyValue{attribute.String(AttrOperation, name)}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
	return ctx, &Operation{name: name, started: time.Now(), span: span, metrics: metrics}
}

// Span is the operation's root span.
func (o *Operation) Span() trace.Span { return o.span }

// Elapsed is the time since the operation started.
func (o *Operation) Elapsed() time.Duration { return time.Since(o.started) }

// End closes the span with status and records the operation metrics.
func (o *Operation) End(ctx context.Context, status string, err error) {
	took := o.Elapsed()
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, status)
		o.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	o.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, took.Milliseconds()),
	)
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordOperation(ctx, o.name, status, took)
	}
}
