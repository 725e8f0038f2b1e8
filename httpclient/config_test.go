package httpclient

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second || cfg.MaxResponseBytes != 8<<20 || cfg.MaxIdleConnsPerHost != 16 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Timeout: 5 * time.Second, MaxResponseBytes: 1024}
	cfg.ApplyDefaults()
	if cfg.Timeout != 5*time.Second || cfg.MaxResponseBytes != 1024 {
		t.Errorf("defaults overrode explicit values: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Timeout: time.Second, MaxResponseBytes: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&Config{MaxResponseBytes: 1}).Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
	if err := (&Config{Timeout: time.Second}).Validate(); err == nil {
		t.Error("expected error for zero max response bytes")
	}
}

func TestDefaultPolicies(t *testing.T) {
	retry := DefaultRetryConfig()
	breaker := DefaultCircuitBreakerConfig("tencent-asr")
	if retry.MaxAttempts != 3 || breaker.Name != "tencent-asr" {
		t.Errorf("retry = %+v breaker = %+v", retry, breaker)
	}

	tests := []struct {
		name  string
		err   error
		count bool
	}{
		{"auth", ClassifyStatusCode(401, nil), false},
		{"bad request", ClassifyStatusCode(400, nil), false},
		{"validation", NewValidationError("bad"), false},
		{"rate limit", ClassifyStatusCode(429, nil), true},
		{"bad gateway", ClassifyStatusCode(502, nil), true},
		{"connection", NewConnectionError(errors.New("refused")), true},
		{"unclassified", errors.New("plain"), false},
	}
	for _, tt := range tests {
		if retry.RetryIf(tt.err) != tt.count {
			t.Errorf("%s: RetryIf = %t, want %t", tt.name, !tt.count, tt.count)
		}
		if breaker.IsFailure(tt.err) != tt.count {
			t.Errorf("%s: IsFailure = %t, want %t", tt.name, !tt.count, tt.count)
		}
	}
}
