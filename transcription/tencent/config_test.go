package tencent

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/asrgate/transcription"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Region != "ap-guangzhou" || cfg.Endpoint != DefaultEndpoint || cfg.Version != "2019-06-14" {
		t.Errorf("endpoint defaults = %q %q %q", cfg.Region, cfg.Endpoint, cfg.Version)
	}
	if cfg.Mode != transcription.ModeInline || cfg.EngineType != "16k_zh" || cfg.InlineLimit != 5<<20 {
		t.Errorf("mode defaults = %q %q %d", cfg.Mode, cfg.EngineType, cfg.InlineLimit)
	}
	if cfg.StatusSucceeded != 1 || cfg.StatusFailed != 2 {
		t.Errorf("status codes = %d/%d", cfg.StatusSucceeded, cfg.StatusFailed)
	}
	if cfg.Poll.Interval != 2*time.Second || cfg.Poll.MaxAttempts != 30 {
		t.Errorf("poll = %+v", cfg.Poll)
	}
	if cfg.Configured() {
		t.Error("Configured() = true without credentials")
	}
}

func TestConfig_ApplyDefaultsCleansCredentials(t *testing.T) {
	cfg := Config{SecretID: " \"AKIDquoted000000001\"\n", SecretKey: "'quoted-key'\r"}
	cfg.ApplyDefaults()
	if cfg.SecretID != "AKIDquoted000000001" || cfg.SecretKey != "quoted-key" {
		t.Errorf("credentials = %q / %q", cfg.SecretID, cfg.SecretKey)
	}
	if !cfg.Configured() {
		t.Error("Configured() = false after cleanup")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty is valid", Config{}, false},
		{"full pair", Config{SecretID: "id", SecretKey: "key"}, false},
		{"half pair", Config{SecretID: "id"}, false},
		{"bad mode", Config{Mode: "stream"}, true},
		{"bad endpoint", Config{Endpoint: "not a url"}, true},
		{"same status codes", Config{StatusSucceeded: 4, StatusFailed: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_CredentialWarning(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"none", Config{}, ""},
		{"both", Config{SecretID: "id", SecretKey: "key"}, ""},
		{"id only", Config{SecretID: "id"}, "secret_key"},
		{"key only", Config{SecretKey: "key"}, "secret_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CredentialWarning()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected warning: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("warning = %v, want mention of %q", err, tt.want)
			}
			if tt.cfg.Configured() {
				t.Error("half a key pair must leave the client unconfigured")
			}
		})
	}
}

func TestConfig_CredentialIsRedacted(t *testing.T) {
	cfg := Config{SecretID: testSecretID, SecretKey: testSecretKey}
	if s := cfg.Credential().String(); s == "" || strings.Contains(s, testSecretKey) || strings.Contains(s, testSecretID) {
		t.Errorf("credential renders secrets: %q", s)
	}
}

