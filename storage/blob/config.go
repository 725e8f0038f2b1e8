package blob

import (
	"fmt"
	"time"

	"github.com/kbukum/asrgate/util"
	"github.com/kbukum/asrgate/validation"
)

// Defaults for the temporary blob service.
const (
	DefaultAPIURL  = "https://blob.vercel-storage.com"
	DefaultTimeout = 30 * time.Second
)

// Config holds temporary blob service settings.
type Config struct {
	// APIURL is the service base URL.
	APIURL string `yaml:"api_url" mapstructure:"api_url" validate:"omitempty,url"`

	// ReadWriteToken is the bearer token (BLOB_READ_WRITE_TOKEN).
	ReadWriteToken string `yaml:"read_write_token" mapstructure:"read_write_token"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.ReadWriteToken = util.SanitizeEnvValue(c.ReadWriteToken)
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Configured reports whether a token is present.
func (c *Config) Configured() bool {
	return c.ReadWriteToken != ""
}

// Validate checks field formats.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("blob: %w", err)
	}
	return nil
}
