package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// AppError is the error every gateway operation returns. Message is safe to
// show to callers; Cause is for logs only.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return s
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e.Details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New builds an AppError; retryability follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

// build is New plus details given as key/value pairs.
func build(code ErrorCode, status int, message string, kv ...any) *AppError {
	e := New(code, message, status)
	for i := 0; i+1 < len(kv); i += 2 {
		e.WithDetail(kv[i].(string), kv[i+1])
	}
	return e
}

// EmptyAudio is returned when a transcription request carries no bytes.
func EmptyAudio() *AppError {
	return build(ErrCodeEmptyAudio, http.StatusBadRequest, "Audio data is empty.")
}

// PayloadTooLarge is returned when audio exceeds limit bytes.
func PayloadTooLarge(size, limit int64) *AppError {
	return build(ErrCodePayloadTooLarge, http.StatusBadRequest,
		fmt.Sprintf("Audio is too large: %d bytes exceeds the %d byte limit.", size, limit),
		"size", size, "limit", limit)
}

// InvalidInput rejects a request field.
func InvalidInput(field, reason string) *AppError {
	e := build(ErrCodeInvalidInput, http.StatusBadRequest, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports failed struct validation.
func Validation(message string) *AppError {
	return build(ErrCodeInvalidInput, http.StatusBadRequest, message)
}

// ConfigError reports a missing or unusable configuration item. Retrying
// will not help until an operator fixes it.
func ConfigError(reason string) *AppError {
	return build(ErrCodeConfig, http.StatusInternalServerError, reason)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return build(ErrCodeInternal, http.StatusInternalServerError,
		"An unexpected error occurred. Please try again or contact support.").WithCause(cause)
}

// RemoteRejected carries a structured error returned by a provider. The
// provider code and message are surfaced verbatim.
func RemoteRejected(provider, code, message string) *AppError {
	var b strings.Builder
	b.WriteString(provider + " rejected the request")
	if code != "" {
		b.WriteString(" (" + code + ")")
	}
	if message != "" {
		b.WriteString(": " + message)
	}
	return build(ErrCodeRemoteRejected, http.StatusInternalServerError, b.String(),
		"provider", provider, "provider_code", code, "provider_message", message)
}

// MalformedResponse reports a provider response that matched neither the
// success nor the error shape.
func MalformedResponse(provider, reason string) *AppError {
	return build(ErrCodeMalformedResponse, http.StatusInternalServerError,
		fmt.Sprintf("%s returned an unexpected response: %s", provider, reason),
		"provider", provider)
}

// Timeout reports an operation that ran out of time.
func Timeout(operation string) *AppError {
	return build(ErrCodeTimeout, http.StatusGatewayTimeout,
		"The request took too long. Please try again.", "operation", operation)
}

// JobTimeout reports a job that did not reach a terminal state within the
// polling budget. The remote job may still complete.
func JobTimeout(provider, jobID string, attempts int) *AppError {
	return build(ErrCodeTimeout, http.StatusGatewayTimeout,
		fmt.Sprintf("Transcription job %s did not finish after %d status checks.", jobID, attempts),
		"provider", provider, "job_id", jobID, "attempts", attempts)
}

// ServiceUnavailable reports a dependency that is temporarily out of reach.
func ServiceUnavailable(service string) *AppError {
	return build(ErrCodeServiceUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		"service", service)
}

// StagingFailed reports an upload failure on a configured staging backend.
func StagingFailed(backend string, cause error) *AppError {
	return build(ErrCodeStagingFailed, http.StatusInternalServerError,
		fmt.Sprintf("Failed to stage audio on %s.", backend), "backend", backend).WithCause(cause)
}

// Provider codes that point at clock skew rather than bad credentials.
var clockSkewCodes = []string{
	"authfailure.signatureexpire",
	"authfailure.signaturefailure",
}

// IsClockSkew reports whether err is a provider rejection caused by a stale
// or skewed request timestamp.
func IsClockSkew(err error) bool {
	if !HasCode(err, ErrCodeRemoteRejected) {
		return false
	}
	appErr, _ := AsAppError(err)
	code, _ := appErr.Details["provider_code"].(string)
	return slices.Contains(clockSkewCodes, strings.ToLower(code))
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Wrap returns the first AppError in err's chain, or err as Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
