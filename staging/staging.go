package staging

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/asrgate/audio"
	apperrors "github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/storage"
	"github.com/kbukum/asrgate/util"
)

// Backend names a staging destination.
type Backend string

const (
	BackendObjectStore Backend = "object-store"
	BackendTempBlob    Backend = "temp-blob"
)

// DefaultPrefix is the key prefix of staged clips.
const DefaultPrefix = "uploads"

const suffixLen = 6

// Ref points at a staged clip. ExpiresAt is zero unless the URL is presigned.
type Ref struct {
	URL       string
	Key       string
	Backend   Backend
	ExpiresAt time.Time
}

// Temporary reports whether the ref must be released after use.
func (r *Ref) Temporary() bool {
	return r != nil && r.Backend == BackendTempBlob
}

// signingPolicy is implemented by object stores that decide themselves
// whether their URLs should be presigned.
type signingPolicy interface {
	SignedURLs() (bool, time.Duration)
}

// Config controls key naming.
type Config struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// ApplyDefaults fills in the default prefix.
func (c *Config) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
}

// Uploader stages clips on the object store or the temporary blob service.
// Either store may be nil.
type Uploader struct {
	cfg     Config
	objects storage.Storage
	temp    storage.Storage
	now     func() time.Time
	log     *logger.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithClock overrides the time source used for keys and expiry.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(u *Uploader) { u.log = log }
}

// NewUploader creates an Uploader. Pass nil for a backend that is not
// configured.
func NewUploader(cfg Config, objects, temp storage.Storage, opts ...Option) *Uploader {
	cfg.ApplyDefaults()
	u := &Uploader{
		cfg:     cfg,
		objects: objects,
		temp:    temp,
		now:     time.Now,
		log:     logger.Get("staging"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Configured reports whether any backend is available.
func (u *Uploader) Configured() bool {
	return u.objects != nil || u.temp != nil
}

// Backend returns the backend Stage would use, or "" when none is configured.
func (u *Uploader) Backend() Backend {
	switch {
	case u.objects != nil:
		return BackendObjectStore
	case u.temp != nil:
		return BackendTempBlob
	default:
		return ""
	}
}

// Key builds a fresh object key for a clip of the given format.
func (u *Uploader) Key(format audio.Format) string {
	return fmt.Sprintf("%s/%d-%s.%s", u.cfg.Prefix, u.now().UnixMilli(), util.RandomSuffix(suffixLen), format.Extension())
}

// Stage uploads the clip and returns a fetchable reference. When no backend
// is configured it returns (nil, nil); upload failures are StagingFailed.
func (u *Uploader) Stage(ctx context.Context, blob audio.Blob, format audio.Format) (*Ref, error) {
	backend := u.Backend()
	if backend == "" {
		return nil, nil
	}
	key := u.Key(format)
	store := u.objects
	if backend == BackendTempBlob {
		store = u.temp
	}

	location, err := store.Put(ctx, key, bytes.NewReader(blob.Data), format.ContentType())
	if err != nil {
		u.log.Warn("staging upload failed", logger.MergeWithError(logger.Fields(
			logger.FieldStagingBackend, string(backend),
			logger.FieldAudioBytes, blob.Size(),
		), err))
		return nil, apperrors.StagingFailed(string(backend), err)
	}

	ref := &Ref{URL: location, Key: key, Backend: backend}
	if backend == BackendObjectStore {
		if err := u.presign(ctx, store, ref); err != nil {
			return nil, apperrors.StagingFailed(string(backend), err)
		}
	}

	u.log.Debug("audio staged", logger.Fields(
		logger.FieldStagingBackend, string(backend),
		logger.FieldFormat, format.String(),
		logger.FieldAudioBytes, blob.Size(),
		"url", logger.RedactURL(ref.URL),
	))
	return ref, nil
}

func (u *Uploader) presign(ctx context.Context, store storage.Storage, ref *Ref) error {
	policy, ok := store.(signingPolicy)
	if !ok {
		return nil
	}
	enabled, ttl := policy.SignedURLs()
	if !enabled {
		return nil
	}
	signer, ok := store.(storage.SignedURLProvider)
	if !ok {
		return nil
	}
	signed, err := signer.SignedURL(ctx, ref.Key, ttl)
	if err != nil {
		return fmt.Errorf("presign %s: %w", ref.Key, err)
	}
	ref.URL = signed
	ref.ExpiresAt = u.now().Add(ttl)
	return nil
}

// Release deletes a temporary clip. Object-store refs are left to the
// bucket's lifecycle rules. The error is returned for the caller to log.
func (u *Uploader) Release(ctx context.Context, ref *Ref) error {
	if !ref.Temporary() || u.temp == nil {
		return nil
	}
	if err := u.temp.Delete(ctx, ref.URL); err != nil {
		return fmt.Errorf("release %s: %w", logger.RedactURL(ref.URL), err)
	}
	return nil
}
