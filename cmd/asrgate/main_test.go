package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/gateway"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/redis"
	servertest "github.com/kbukum/asrgate/server/testutil"
	"github.com/kbukum/asrgate/storage"
	"github.com/kbukum/asrgate/testutil"
	"github.com/kbukum/asrgate/testutil/fixtures"
)

// serve wires the gateway from cfg and serves it on a test server.
func serve(t *testing.T, cfg *Config) *servertest.Component {
	t.Helper()
	objects := storage.NewComponent(objectStoreName, storage.Config{Provider: storage.ProviderS3}, &cfg.COS, logger.Nop())
	temp := storage.NewComponent(tempBlobName, storage.Config{Provider: storage.ProviderBlob}, &cfg.Blob, logger.Nop())
	cache := redis.NewComponent(cfg.Redis, logger.Nop())
	for _, c := range []interface{ Start(context.Context) error }{objects, temp, cache} {
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
	}
	gw, err := newGateway(cfg, objects, temp, cache)
	if err != nil {
		t.Fatalf("newGateway: %v", err)
	}
	srv := servertest.NewComponent(gateway.NewHandler(gw).Register)
	testutil.T(t).Setup(srv)
	return srv
}

func post(t *testing.T, url string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "audio/wav")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestServe_WhisperFallback(t *testing.T) {
	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/transcribe":
			_, _ = io.WriteString(w, `{"text":"测试成功"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer sidecar.Close()

	var cfg Config
	cfg.ApplyDefaults()
	cfg.Whisper.Enabled = true
	cfg.Whisper.URL = sidecar.URL

	srv := serve(t, &cfg)
	resp, body := post(t, srv.BaseURL()+"/api/asr", fixtures.WAV(32))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var out gateway.Response
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != "测试成功" {
		t.Errorf("text = %q", out.Text)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("response has no request id")
	}
}

func TestServe_Unconfigured(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	srv := serve(t, &cfg)
	resp, body := post(t, srv.BaseURL()+"/transcribe", fixtures.WAV(32))

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var out struct {
		Code errors.ErrorCode `json:"code"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != errors.ErrCodeConfig {
		t.Errorf("code = %s, want %s", out.Code, errors.ErrCodeConfig)
	}
}
