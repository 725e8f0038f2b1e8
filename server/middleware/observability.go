package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/asrgate/observability"
)

// Tracing starts one server span per request.
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()
			if id := r.Header.Get(RequestIDHeader); id != "" {
				span.SetAttributes(attribute.String(observability.AttrRequestID, id))
			}

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			span.SetAttributes(attribute.Int("http.status_code", status), attribute.Int64("http.response_size", rec.size))
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}

// Metrics records request count, latency and in-flight requests. A nil
// metrics disables recording.
func Metrics(metrics *observability.Metrics, service string) Middleware {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.RecordRequestStart(r.Context())
			rec := record(w)
			next.ServeHTTP(rec, r)
			metrics.RecordRequestEnd(r.Context(), service, r.Method+" "+r.URL.Path, strconv.Itoa(rec.Status()), time.Since(start))
		})
	}
}
