package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/asrgate/logger"
)

// slowRequest marks log lines for requests that took longer than a typical
// inline recognition.
const slowRequest = 5 * time.Second

// RequestLogger logs one line per request, at error level for 5xx and warn
// for 4xx. Probe endpoints are not logged. The query string never is, since
// callers may pass signed audio URLs there.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/info" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			fields := logger.MergeWithDuration(map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": rec.Status(),
				"bytes":  rec.size,
			}, took)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if took > slowRequest {
				fields["slow"] = true
			}

			switch status := rec.Status(); {
			case status >= 500:
				log.Error("request", fields)
			case status >= 400:
				log.Warn("request", fields)
			default:
				log.Info("request", fields)
			}
		})
	}
}
