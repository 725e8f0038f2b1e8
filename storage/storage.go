package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object or location is unknown.
var ErrNotFound = errors.New("storage: object not found")

// Storage defines the operations staging needs from an object store.
type Storage interface {
	// Put writes the object and returns its fetchable location.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Delete removes an object by key or by the location Put returned.
	// Deleting a missing object is not an error.
	Delete(ctx context.Context, keyOrURL string) error

	// Exists checks whether an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public URL of the object.
	URL(ctx context.Context, key string) (string, error)
}

// SignedURLProvider is optionally implemented by backends that can issue
// time-limited URLs for private objects.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
