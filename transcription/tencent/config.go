package tencent

import (
	"time"

	"github.com/kbukum/asrgate/signer"
	"github.com/kbukum/asrgate/transcription"
	"github.com/kbukum/asrgate/util"
	"github.com/kbukum/asrgate/validation"
)

const (
	DefaultEndpoint        = "https://asr.tencentcloudapi.com"
	DefaultRegion          = "ap-guangzhou"
	DefaultVersion         = "2019-06-14"
	DefaultService         = "asr"
	DefaultEngineType      = "16k_zh"
	DefaultInlineLimit     = int64(5 << 20)
	DefaultStatusSucceeded = 1
	DefaultStatusFailed    = 2
	DefaultTimeout         = 30 * time.Second
)

// Config holds the Tencent Cloud ASR settings. Missing credentials do not
// fail validation; the client then reports itself unavailable and every call
// returns a ConfigError.
type Config struct {
	SecretID  string `yaml:"secret_id" mapstructure:"secret_id"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	// Token is the optional session token of temporary credentials.
	Token string `yaml:"token" mapstructure:"token"`

	Region   string `yaml:"asr_region" mapstructure:"asr_region"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	Version  string `yaml:"version" mapstructure:"version"`
	Service  string `yaml:"service" mapstructure:"service"`

	// Mode selects inline (SentenceRecognition) or file (CreateRecTask).
	Mode       transcription.Mode `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=inline file"`
	EngineType string             `yaml:"engine_type" mapstructure:"engine_type"`
	// InlineLimit caps the clip size accepted in inline mode.
	InlineLimit int64 `yaml:"inline_limit" mapstructure:"inline_limit" validate:"gte=0"`

	// Job status codes reported by DescribeTaskStatus. Any other value
	// means the job is still running.
	StatusSucceeded int `yaml:"status_succeeded" mapstructure:"status_succeeded"`
	StatusFailed    int `yaml:"status_failed" mapstructure:"status_failed"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ClockMaxAge is how long a measured clock offset is reused.
	ClockMaxAge time.Duration `yaml:"clock_max_age" mapstructure:"clock_max_age"`
	// DisableClockSync signs with the local clock only.
	DisableClockSync bool `yaml:"disable_clock_sync" mapstructure:"disable_clock_sync"`
	// CircuitBreaker wraps the transport in a breaker.
	CircuitBreaker bool `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	Poll transcription.PollConfig `yaml:"poll" mapstructure:"poll"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.SecretID = util.SanitizeEnvValue(c.SecretID)
	c.SecretKey = util.SanitizeEnvValue(c.SecretKey)
	c.Token = util.SanitizeEnvValue(c.Token)
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Mode == "" {
		c.Mode = transcription.ModeInline
	}
	if c.EngineType == "" {
		c.EngineType = DefaultEngineType
	}
	if c.InlineLimit <= 0 {
		c.InlineLimit = DefaultInlineLimit
	}
	if c.StatusSucceeded == 0 && c.StatusFailed == 0 {
		c.StatusSucceeded = DefaultStatusSucceeded
		c.StatusFailed = DefaultStatusFailed
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ClockMaxAge <= 0 {
		c.ClockMaxAge = signer.DefaultMaxAge
	}
	c.Poll.ApplyDefaults()
}

// Validate checks struct tags and that the status codes differ. Credentials
// are not checked; see Configured and CredentialWarning.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		Custom(c.StatusSucceeded != c.StatusFailed, "status_failed", "must differ from status_succeeded").
		Err()
}

// Credential returns the signing credential.
func (c *Config) Credential() signer.Credential {
	return signer.Credential{SecretID: c.SecretID, SecretKey: c.SecretKey, Token: c.Token}
}

// CredentialWarning describes a half-set key pair. It is logged, never
// returned from startup; the client stays unconfigured.
func (c *Config) CredentialWarning() error {
	return validation.New().
		RequiredTogether(map[string]string{"secret_id": c.SecretID, "secret_key": c.SecretKey}).
		Err()
}

// Configured reports whether both halves of the key pair are set.
func (c *Config) Configured() bool {
	return c.Credential().Validate() == nil
}
