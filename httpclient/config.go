package httpclient

import (
	"errors"
	"time"

	"github.com/kbukum/asrgate/resilience"
)

// Config is shared by every request a Client sends. Timeout covers the
// whole exchange including the body, and longer bodies are cut at
// MaxResponseBytes. Auth and the resilience policies are wired in code,
// not loaded from files.
type Config struct {
	BaseURL             string            `yaml:"base_url" mapstructure:"base_url"`
	Timeout             time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	MaxResponseBytes    int64             `yaml:"max_response_bytes" mapstructure:"max_response_bytes"`
	MaxIdleConnsPerHost int               `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host"`
	Headers             map[string]string `yaml:"headers" mapstructure:"headers"`

	Auth           *AuthConfig                      `yaml:"-" mapstructure:"-"`
	Retry          *resilience.RetryConfig          `yaml:"-" mapstructure:"-"`
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets a 30s timeout, an 8 MiB response cap and 16 idle
// connections per host.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 8 << 20
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 16
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("httpclient: timeout must be positive"))
	}
	if c.MaxResponseBytes <= 0 {
		errs = append(errs, errors.New("httpclient: max_response_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// DefaultRetryConfig retries transport failures, 429 and 5xx.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig only counts retryable failures, so 4xx
// answers never trip it.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.IsFailure = IsRetryable
	return &cfg
}
