package s3

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/asrgate/util"
	"github.com/kbukum/asrgate/validation"
)

// Defaults for Tencent COS.
const (
	DefaultRegion       = "ap-shanghai"
	DefaultACL          = "public-read"
	DefaultSignedURLTTL = 300 * time.Second
)

// Config holds S3-compatible object store settings. The zero Endpoint
// targets Tencent COS in Region.
type Config struct {
	// Bucket is the COS bucket in "<name>-<appid>" form.
	Bucket string `yaml:"bucket" mapstructure:"bucket" validate:"omitempty,cos_bucket"`

	// Region is the COS region, e.g. ap-shanghai.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint overrides the API endpoint, e.g. a MinIO instance in tests.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// PublicBaseURL overrides the host used for public object URLs.
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url" validate:"omitempty,url"`

	// SecretID and SecretKey are the COS key pair (COS_SECRET_ID, COS_SECRET_KEY).
	SecretID  string `yaml:"secret_id" mapstructure:"secret_id"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// ForcePathStyle puts the bucket in the path instead of the host.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`

	// ACL is the canned ACL applied on upload. Empty leaves the bucket default.
	ACL string `yaml:"acl" mapstructure:"acl"`

	// StorageClass is applied on upload when set (COS_STORAGE_CLASS).
	StorageClass string `yaml:"storage_class" mapstructure:"storage_class"`

	// SignedURLs makes staging hand out presigned GET URLs.
	SignedURLs bool `yaml:"signed_urls" mapstructure:"signed_urls"`

	// SignedURLTTL is the lifetime of presigned URLs.
	SignedURLTTL time.Duration `yaml:"signed_url_ttl" mapstructure:"signed_url_ttl"`
}

// ApplyDefaults fills in zero-valued fields with COS defaults.
func (c *Config) ApplyDefaults() {
	c.Bucket = util.SanitizeEnvValue(c.Bucket)
	c.SecretID = util.SanitizeEnvValue(c.SecretID)
	c.SecretKey = util.SanitizeEnvValue(c.SecretKey)
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.ACL == "" {
		c.ACL = DefaultACL
	}
	if c.SignedURLTTL <= 0 {
		c.SignedURLTTL = DefaultSignedURLTTL
	}
}

// Configured reports whether the object store has everything it needs to
// accept uploads. An unconfigured store is skipped, not an error.
func (c *Config) Configured() bool {
	return c.Bucket != "" && c.SecretID != "" && c.SecretKey != ""
}

// Validate checks field formats. Missing values are allowed; they make the
// store unconfigured.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	return nil
}

// CredentialWarning describes a half-set key pair, which leaves the store
// unconfigured.
func (c *Config) CredentialWarning() error {
	err := validation.New().RequiredTogether(map[string]string{
		"secret_id":  c.SecretID,
		"secret_key": c.SecretKey,
	}).Err()
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	return nil
}

// GetBucket returns the bucket name.
func (c *Config) GetBucket() string { return c.Bucket }

// APIEndpoint returns the S3 API endpoint.
func (c *Config) APIEndpoint() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://cos.%s.myqcloud.com", c.Region)
}

// ObjectURL returns the public URL of key.
func (c *Config) ObjectURL(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case c.PublicBaseURL != "":
		return strings.TrimRight(c.PublicBaseURL, "/") + "/" + key
	case c.Endpoint != "" || c.ForcePathStyle:
		return c.APIEndpoint() + "/" + c.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.cos.%s.myqcloud.com/%s", c.Bucket, c.Region, key)
	}
}
