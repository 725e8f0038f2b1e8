package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testSection struct {
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	ASRRegion string `mapstructure:"asr_region"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Tencent       testSection       `mapstructure:"tencent"`
	Blob          map[string]string `mapstructure:"blob"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return p
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "asrgate"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "asrgate" {
			t.Errorf("expected logging service name propagated, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "asrgate", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "name: is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "environment: must be one of: development staging production"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: asrgate
environment: staging
tencent:
  asr_region: ap-beijing
`)

	var cfg testConfig
	if err := LoadConfig("asrgate", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "asrgate" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Tencent.ASRRegion != "ap-beijing" {
		t.Errorf("expected asr_region from yaml, got %q", cfg.Tencent.ASRRegion)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: asrgate
tencent:
  asr_region: ap-beijing
`)
	t.Setenv("TENCENT_SECRET_ID", "AKIDtest")
	t.Setenv("TENCENT_ASR_REGION", "ap-guangzhou")

	var cfg testConfig
	if err := LoadConfig("asrgate", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Tencent.SecretID != "AKIDtest" {
		t.Errorf("expected secret id from env, got %q", cfg.Tencent.SecretID)
	}
	if cfg.Tencent.ASRRegion != "ap-guangzhou" {
		t.Errorf("expected env to override yaml, got %q", cfg.Tencent.ASRRegion)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "TENCENT_SECRET_KEY=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("TENCENT_SECRET_KEY") })

	var cfg testConfig
	if err := LoadConfig("asrgate", &cfg, WithConfigFile(filepath.Join(dir, "none.yml")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Tencent.SecretKey != "from-dotenv" {
		t.Errorf("expected secret key from .env, got %q", cfg.Tencent.SecretKey)
	}
}

func TestLoadConfigEnvAliases(t *testing.T) {
	t.Setenv("ASRGATE_BLOB_TOKEN_LEGACY", "tok")

	var cfg testConfig
	err := LoadConfig("asrgate", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvAliases(map[string]string{"ASRGATE_BLOB_TOKEN_LEGACY": "blob.read_write_token"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Blob["read_write_token"] != "tok" {
		t.Errorf("expected alias binding, got %v", cfg.Blob)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		env  string
		want []string
	}{
		{"PORT", []string{"port"}},
		{"COS_BUCKET", []string{"cos_bucket", "cos.bucket"}},
		{"TENCENT_ASR_REGION", []string{"tencent_asr_region", "tencent.asr.region", "tencent.asr_region"}},
		{"BLOB_READ_WRITE_TOKEN", []string{"blob.read_write_token", "blob.read.write_token"}},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			got := envKeyVariants(tc.env)
			for _, w := range tc.want {
				if !slices.Contains(got, w) {
					t.Errorf("expected %q in %v", w, got)
				}
			}
		})
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		pinned     string
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "nearest config and service env file",
			files:      []string{"./cmd/asrgate/config.yml", "./config/config.yml", "./.env", "./config/.env.asrgate"},
			wantConfig: "./cmd/asrgate/config.yml",
			wantEnv:    "./config/.env.asrgate",
		},
		{
			name:       "parent directories",
			files:      []string{"../config/config.yml", "../../.env"},
			wantConfig: "../config/config.yml",
			wantEnv:    "../../.env",
		},
		{
			name:       "pinned path wins",
			files:      []string{"./cmd/asrgate/config.yml"},
			pinned:     "/etc/asrgate.yml",
			wantConfig: "/etc/asrgate.yml",
		},
		{name: "nothing found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			o := options{fs: fs, configFile: tc.pinned}
			cfg, env := o.locate("asrgate")
			if cfg != tc.wantConfig || env != tc.wantEnv {
				t.Errorf("locate = (%q, %q), want (%q, %q)", cfg, env, tc.wantConfig, tc.wantEnv)
			}
		})
	}
}

func TestLoadConfigUsesFileSystem(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env.asrgate": true}}
	var cfg testConfig
	if err := LoadConfig("asrgate", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !slices.Equal(fs.loaded, []string{"./.env.asrgate"}) {
		t.Errorf("loaded = %v", fs.loaded)
	}
}

func TestLoadConfigBrokenYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unterminated\n")
	var cfg testConfig
	err := LoadConfig("asrgate", &cfg, WithConfigFile(path))
	if err == nil || !strings.Contains(err.Error(), "config.yml") {
		t.Errorf("LoadConfig = %v, want read error naming the file", err)
	}
}
