package main

import (
	"fmt"

	"github.com/kbukum/asrgate/config"
	"github.com/kbukum/asrgate/gateway"
	"github.com/kbukum/asrgate/observability"
	"github.com/kbukum/asrgate/redis"
	"github.com/kbukum/asrgate/server"
	"github.com/kbukum/asrgate/staging"
	"github.com/kbukum/asrgate/storage/blob"
	"github.com/kbukum/asrgate/storage/s3"
	"github.com/kbukum/asrgate/transcription/tencent"
	"github.com/kbukum/asrgate/transcription/whisper"
	"github.com/kbukum/asrgate/validation"
	"github.com/kbukum/asrgate/version"
)

const serviceName = "asrgate"

// Config is the full asrgate configuration. Environment variables address
// nested keys directly: TENCENT_SECRET_ID sets tencent.secret_id,
// COS_BUCKET sets cos.bucket, BLOB_READ_WRITE_TOKEN sets blob.read_write_token.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Gateway       gateway.Config       `yaml:"gateway" mapstructure:"gateway"`
	Tencent       tencent.Config       `yaml:"tencent" mapstructure:"tencent"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	COS           s3.Config            `yaml:"cos" mapstructure:"cos"`
	Blob          blob.Config          `yaml:"blob" mapstructure:"blob"`
	Staging       staging.Config       `yaml:"staging" mapstructure:"staging"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Sentry        SentryConfig         `yaml:"sentry" mapstructure:"sentry"`
}

// SentryConfig enables error reporting when DSN is set (SENTRY_DSN).
type SentryConfig struct {
	DSN              string  `yaml:"dsn" mapstructure:"dsn"`
	TracesSampleRate float64 `yaml:"traces_sample_rate" mapstructure:"traces_sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.GetVersionInfo().Version
	}
	c.ServiceConfig.ApplyDefaults()

	// REDIS_ADDR alone turns the transcript cache on.
	if c.Redis.Addr != "" {
		c.Redis.Enabled = true
	}

	c.Server.ApplyDefaults()
	c.Gateway.ApplyDefaults()
	c.Tencent.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.COS.ApplyDefaults()
	c.Blob.ApplyDefaults()
	c.Staging.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. Missing provider or storage credentials
// are not errors; requests that need them fail with CONFIG_ERROR instead.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	sections := []struct {
		name     string
		validate func() error
	}{
		{"server", c.Server.Validate},
		{"gateway", c.Gateway.Validate},
		{"tencent", c.Tencent.Validate},
		{"cos", c.COS.Validate},
		{"blob", c.Blob.Validate},
		{"redis", c.Redis.Validate},
		{"observability", func() error { return validation.Validate(&c.Observability) }},
		{"sentry", func() error { return validation.Validate(&c.Sentry) }},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("config.%s: %w", s.name, err)
		}
	}
	return nil
}
