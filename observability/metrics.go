package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the gateway's instruments. All methods are safe for
// concurrent use.
type Metrics struct {
	requests       metric.Int64Counter
	requestSeconds metric.Float64Histogram
	inflight       metric.Int64UpDownCounter
	operations     metric.Int64Counter
	operationSecs  metric.Float64Histogram
	errors         metric.Int64Counter
	transcriptions metric.Int64Counter
	transcribeSecs metric.Float64Histogram
	audioBytes     metric.Int64Histogram
	pollAttempts   metric.Int64Histogram
	cacheLookups   metric.Int64Counter
	stagingUploads metric.Int64Counter
}

// builder creates instruments and keeps the first failures for NewMetrics.
type builder struct {
	meter metric.Meter
	errs  []error
}

func (b *builder) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.errs = append(b.errs, err)
	return c
}

func (b *builder) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.errs = append(b.errs, err)
	return h
}

func (b *builder) histogram(name, desc, unit string) metric.Int64Histogram {
	opts := []metric.Int64HistogramOption{metric.WithDescription(desc)}
	if unit != "" {
		opts = append(opts, metric.WithUnit(unit))
	}
	h, err := b.meter.Int64Histogram(name, opts...)
	b.errs = append(b.errs, err)
	return h
}

// NewMetrics registers the gateway instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	b := &builder{meter: meter}
	inflight, err := meter.Int64UpDownCounter("request.active", metric.WithDescription("Requests in flight"))
	b.errs = append(b.errs, err)

	m := &Metrics{
		requests:       b.counter("request.total", "HTTP requests served"),
		requestSeconds: b.seconds("request.duration", "HTTP request latency"),
		inflight:       inflight,
		operations:     b.counter("operation.total", "Operations by name and status"),
		operationSecs:  b.seconds("operation.duration", "Operation latency"),
		errors:         b.counter("error.total", "Errors by code and component"),
		transcriptions: b.counter("asr.transcription.total", "Transcriptions by provider and outcome"),
		transcribeSecs: b.seconds("asr.transcription.duration", "End-to-end transcription latency"),
		audioBytes:     b.histogram("asr.audio.bytes", "Size of submitted audio", "By"),
		pollAttempts:   b.histogram("asr.poll.attempts", "Status checks per file-mode job", ""),
		cacheLookups:   b.counter("asr.cache.lookups", "Transcript cache lookups by result"),
		stagingUploads: b.counter("asr.staging.total", "Audio uploads by staging backend and status"),
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRequestStart marks a request as in flight.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.inflight.Add(ctx, 1)
}

// RecordRequestEnd closes a request opened by RecordRequestStart.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, route, status string, took time.Duration) {
	m.inflight.Add(ctx, -1)
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
		attribute.String("status", status),
	))
	m.requestSeconds.Record(ctx, took.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
	))
}

// RecordOperation counts one finished operation.
func (m *Metrics) RecordOperation(ctx context.Context, operation, status string, took time.Duration) {
	op := attribute.String("operation", operation)
	m.operations.Add(ctx, 1, metric.WithAttributes(op, attribute.String("status", status)))
	m.operationSecs.Record(ctx, took.Seconds(), metric.WithAttributes(op))
}

// RecordError counts an error by code and the component that saw it.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}

// RecordTranscription counts one finished transcription.
func (m *Metrics) RecordTranscription(ctx context.Context, provider, outcome string, took time.Duration) {
	p := attribute.String("provider", provider)
	m.transcriptions.Add(ctx, 1, metric.WithAttributes(p, attribute.String("outcome", outcome)))
	m.transcribeSecs.Record(ctx, took.Seconds(), metric.WithAttributes(p))
}

// RecordAudio records the size of accepted audio.
func (m *Metrics) RecordAudio(ctx context.Context, format string, size int64) {
	m.audioBytes.Record(ctx, size, metric.WithAttributes(attribute.String("format", format)))
}

// RecordPollAttempts records how many status checks a job took.
func (m *Metrics) RecordPollAttempts(ctx context.Context, provider string, attempts int) {
	m.pollAttempts.Record(ctx, int64(attempts), metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCacheLookup counts a transcript cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordStaging counts one staging upload.
func (m *Metrics) RecordStaging(ctx context.Context, backend, status string) {
	m.stagingUploads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}
