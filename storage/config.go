package storage

import (
	"fmt"
)

// Provider names of the built-in backends.
const (
	ProviderS3   = "s3"
	ProviderBlob = "blob"
)

// DefaultMaxFileSize caps a single Put.
const DefaultMaxFileSize = int64(5 << 20)

// Config holds the backend-independent storage settings.
type Config struct {
	// Provider selects the backend factory.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// MaxFileSize is the maximum allowed object size in bytes.
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"`

	// Enabled controls whether the storage component is active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("storage: provider is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("storage: max_file_size must be positive")
	}
	return nil
}
