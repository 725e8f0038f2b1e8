package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindConnection  Kind = "connection"
	KindCircuitOpen Kind = "circuit_open"
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindRateLimit   Kind = "rate_limit"
	KindClient      Kind = "client"
	KindServer      Kind = "server"
)

// Error is a classified request failure. For HTTP-level failures the
// client returns the Response too, so callers can read the body.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("httpclient: %s (HTTP %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	}
	return "httpclient: " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether sending the same request again may succeed.
// An open circuit is not retryable; the breaker would reject it again.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnection, KindRateLimit, KindServer:
		return true
	}
	return false
}

// NewTimeoutError wraps a deadline or cancellation.
func NewTimeoutError(err error) *Error { return &Error{Kind: KindTimeout, Err: err} }

// NewConnectionError wraps a transport failure.
func NewConnectionError(err error) *Error { return &Error{Kind: KindConnection, Err: err} }

// NewCircuitOpenError wraps resilience.ErrCircuitOpen.
func NewCircuitOpenError(err error) *Error { return &Error{Kind: KindCircuitOpen, Err: err} }

// NewValidationError reports a request that could not be built.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Err: errors.New(msg)}
}

// ClassifyStatusCode returns nil for 2xx and a classified *Error otherwise.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	var kind Kind
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = KindAuth
	case statusCode == http.StatusNotFound:
		kind = KindNotFound
	case statusCode == http.StatusTooManyRequests:
		kind = KindRateLimit
	case statusCode >= 400 && statusCode < 500:
		kind = KindClient
	case statusCode >= 500:
		kind = KindServer
	default:
		kind = KindClient
	}
	return &Error{Kind: kind, StatusCode: statusCode, Body: body}
}

// KindOf returns the kind of a classified error, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout reports a timed-out request.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsCircuitOpen reports a call rejected by the breaker.
func IsCircuitOpen(err error) bool { return KindOf(err) == KindCircuitOpen }

// IsRetryable reports a classified error worth retrying.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
