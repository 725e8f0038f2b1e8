package gateway

import (
	"time"

	"github.com/kbukum/asrgate/validation"
)

const (
	DefaultMaxAudioSize      = int64(5 << 20)
	DefaultMaxConcurrentJobs = 32
	DefaultReleaseTimeout    = 15 * time.Second
)

// DefaultProviders is the recognizer priority used when none is configured.
var DefaultProviders = []string{"tencent", "whisper"}

// Config controls request limits and provider selection.
type Config struct {
	// MaxAudioSize is the largest clip accepted, in bytes.
	MaxAudioSize int64 `yaml:"max_audio_size" mapstructure:"max_audio_size" validate:"gte=0"`
	// Providers lists recognizer names in priority order.
	Providers []string `yaml:"providers" mapstructure:"providers"`

	// MaxConcurrentJobs caps in-flight transcriptions. Further requests
	// wait up to QueueWait, then fail with SERVICE_UNAVAILABLE.
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs" validate:"gte=0"`
	QueueWait         time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`

	// CacheTTL is how long cached transcripts live. Zero keeps them until evicted.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// ReleaseTimeout bounds each background release of a staged clip.
	ReleaseTimeout time.Duration `yaml:"release_timeout" mapstructure:"release_timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxAudioSize <= 0 {
		c.MaxAudioSize = DefaultMaxAudioSize
	}
	if len(c.Providers) == 0 {
		c.Providers = append([]string(nil), DefaultProviders...)
	}
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = DefaultMaxConcurrentJobs
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.ReleaseTimeout <= 0 {
		c.ReleaseTimeout = DefaultReleaseTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for _, name := range c.Providers {
		v.Required("providers", name)
	}
	return v.Err()
}
