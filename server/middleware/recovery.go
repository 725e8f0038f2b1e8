package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack and
// reports the panic to sentry. Without a sentry client the report is a no-op.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered", map[string]any{
					logger.FieldError:     fmt.Sprintf("%v", rec),
					"stack":               string(debug.Stack()),
					"path":                r.URL.Path,
					"method":              r.Method,
					logger.FieldRequestID: r.Header.Get(RequestIDHeader),
				})

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.RecoverWithContext(r.Context(), rec)
				hub.Flush(2 * time.Second)

				body := apperrors.Internal(nil).ToResponse()
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
