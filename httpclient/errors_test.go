package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/asrgate/resilience"
)

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		kind      Kind
		retryable bool
	}{
		{200, "", false},
		{204, "", false},
		{400, KindClient, false},
		{401, KindAuth, false},
		{403, KindAuth, false},
		{404, KindNotFound, false},
		{413, KindClient, false},
		{429, KindRateLimit, true},
		{500, KindServer, true},
		{503, KindServer, true},
		{302, KindClient, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyStatusCode(tt.status, []byte(`{"error":"x"}`))
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("ClassifyStatusCode(%d) = %v, want nil", tt.status, err)
				}
				return
			}
			if err == nil || err.Kind != tt.kind || err.StatusCode != tt.status {
				t.Fatalf("ClassifyStatusCode(%d) = %+v", tt.status, err)
			}
			if err.Retryable() != tt.retryable || IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %t, want %t", err.Retryable(), tt.retryable)
			}
			if string(err.Body) != `{"error":"x"}` {
				t.Errorf("body = %q", err.Body)
			}
		})
	}
}

func TestError_Wrapping(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		kind      Kind
		cause     error
		retryable bool
	}{
		{"timeout", NewTimeoutError(context.DeadlineExceeded), KindTimeout, context.DeadlineExceeded, true},
		{"connection", NewConnectionError(errors.New("connection refused")), KindConnection, nil, true},
		{"circuit open", NewCircuitOpenError(resilience.ErrCircuitOpen), KindCircuitOpen, resilience.ErrCircuitOpen, false},
		{"validation", NewValidationError("encode body: bad"), KindValidation, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("storage: blob put: %w", tt.err)
			if KindOf(wrapped) != tt.kind {
				t.Errorf("KindOf = %q, want %q", KindOf(wrapped), tt.kind)
			}
			if tt.cause != nil && !errors.Is(wrapped, tt.cause) {
				t.Errorf("cause %v not reachable", tt.cause)
			}
			if IsRetryable(wrapped) != tt.retryable {
				t.Errorf("IsRetryable = %t", IsRetryable(wrapped))
			}
			if !strings.HasPrefix(tt.err.Error(), "httpclient: "+string(tt.kind)) {
				t.Errorf("Error() = %q", tt.err.Error())
			}
		})
	}

	if !IsTimeout(NewTimeoutError(context.Canceled)) || IsTimeout(errors.New("plain")) {
		t.Error("IsTimeout misclassified")
	}
	if !IsCircuitOpen(NewCircuitOpenError(resilience.ErrCircuitOpen)) {
		t.Error("IsCircuitOpen = false")
	}
	if KindOf(nil) != "" || IsRetryable(errors.New("plain")) {
		t.Error("plain errors must not classify")
	}
}

func TestError_MessageOmitsBody(t *testing.T) {
	err := ClassifyStatusCode(401, []byte(`{"token":"vercel_blob_rw_secret"}`))
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("Error() leaks the body: %q", err.Error())
	}
	if err.Error() != "httpclient: auth (HTTP 401)" {
		t.Errorf("Error() = %q", err.Error())
	}
}
