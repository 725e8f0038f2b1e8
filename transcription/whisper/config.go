package whisper

import "time"

// Config points at a faster-whisper sidecar.
type Config struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	// Model, Language, Device and ComputeType are passed through as form
	// fields; empty ones are left for the sidecar to decide.
	Model       string        `yaml:"model" mapstructure:"model"`
	Language    string        `yaml:"language" mapstructure:"language"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:8387"
	}
	if c.Model == "" {
		c.Model = "base"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
}

// form is the multipart field set sent with every clip.
func (c *Config) form() map[string]string {
	out := map[string]string{"model": c.Model}
	for k, v := range map[string]string{
		"language":     c.Language,
		"device":       c.Device,
		"compute_type": c.ComputeType,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
