package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kbukum/asrgate"

// Span names, one per gateway phase.
const (
	SpanHTTPRequest = "http.request"
	SpanTranscribe  = "asr.transcribe"
	SpanSniff       = "asr.sniff"
	SpanStage       = "asr.stage"
	SpanSubmit      = "asr.submit"
	SpanPoll        = "asr.poll"
	SpanRecognize   = "asr.recognize"
	SpanRelease     = "asr.release"
)

// Span attribute keys.
const (
	AttrOperation      = "operation.name"
	AttrRequestID      = "request.id"
	AttrDurationMs     = "duration_ms"
	AttrStatus         = "status"
	AttrErrorMessage   = "error.message"
	AttrProvider       = "asr.provider"
	AttrFormat         = "asr.format"
	AttrAudioBytes     = "asr.audio_bytes"
	AttrJobID          = "asr.job_id"
	AttrStagingBackend = "asr.staging_backend"
	AttrPollAttempts   = "asr.poll_attempts"
	AttrCacheHit       = "asr.cache_hit"
)

// StartSpan starts a span on the global tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// SetSpanError records err on the span carried by ctx, if any.
func SetSpanError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); err != nil && span.IsRecording() {
		span.RecordError(err)
	}
}
