package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/kbukum/asrgate/httpclient"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderBlob, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c, ok := providerCfg.(*Config)
		if !ok || c == nil {
			return nil, fmt.Errorf("blob: expected *blob.Config, got %T", providerCfg)
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		s, err := NewStorage(*c)
		if err != nil {
			return nil, err
		}
		log.Info("temp blob store ready", logger.Fields("api_url", c.APIURL))
		return s, nil
	})
}

// Storage implements storage.Storage on a temporary public blob service.
// Objects are addressed by the URL the service returns; keys are mapped to
// URLs for the lifetime of the process.
type Storage struct {
	client *httpclient.Client

	mu        sync.RWMutex
	locations map[string]string
}

var _ storage.Storage = (*Storage)(nil)

type putResponse struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

type deleteRequest struct {
	URLs []string `json:"urls"`
}

// NewStorage creates a blob client.
func NewStorage(cfg Config) (*Storage, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("blob: read_write_token is required")
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.ReadWriteToken),
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("blob: %w", err)
	}
	return &Storage{client: client, locations: make(map[string]string)}, nil
}

// Put uploads the object with public access and a deterministic pathname.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("storage: blob put: %w", err)
	}
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   "/" + strings.TrimLeft(key, "/"),
		Headers: map[string]string{
			"Content-Type":        contentType,
			"x-content-type":      contentType,
			"x-add-random-suffix": "0",
			"x-access":            "public",
		},
		Body: data,
	})
	if err != nil {
		return "", fmt.Errorf("storage: blob put: %w", err)
	}

	var out putResponse
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("storage: blob put: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("storage: blob put: response has no url")
	}

	s.mu.Lock()
	s.locations[key] = out.URL
	s.mu.Unlock()
	return out.URL, nil
}

// Delete removes a blob by key or by the URL Put returned. Unknown keys
// are a no-op. The key mapping is dropped even when the call fails.
func (s *Storage) Delete(ctx context.Context, keyOrURL string) error {
	target, key := s.resolve(keyOrURL)
	if target == "" {
		return nil
	}
	if key != "" {
		s.mu.Lock()
		delete(s.locations, key)
		s.mu.Unlock()
	}
	_, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/delete",
		Body:   deleteRequest{URLs: []string{target}},
	})
	if err != nil {
		return fmt.Errorf("storage: blob delete: %w", err)
	}
	return nil
}

// Exists asks the service for blob metadata.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	target, _ := s.resolve(key)
	if target == "" {
		return false, nil
	}
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/",
		Query:  map[string]string{"url": target},
	})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: blob head: %w", err)
	}
	return true, nil
}

// URL returns the location recorded by Put.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.locations[key]; ok {
		return u, nil
	}
	return "", storage.ErrNotFound
}

func (s *Storage) resolve(keyOrURL string) (target, key string) {
	if strings.HasPrefix(keyOrURL, "https://") || strings.HasPrefix(keyOrURL, "http://") {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for k, u := range s.locations {
			if u == keyOrURL {
				return keyOrURL, k
			}
		}
		return keyOrURL, ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations[keyOrURL], keyOrURL
}
