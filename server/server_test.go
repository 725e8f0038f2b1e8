package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/asrgate/component"
	apperrors "github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
)

func newTestServer() *Server {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return New(cfg, logger.Nop())
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.WriteTimeout != 90*time.Second || cfg.ReadTimeout != 30*time.Second {
		t.Errorf("timeouts = %s/%s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.MaxBodySize != "10MB" {
		t.Errorf("MaxBodySize = %q", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8080}, false},
		{"port too high", Config{Port: 70000}, true},
		{"negative port", Config{Port: -1}, true},
		{"negative read timeout", Config{ReadTimeout: -1}, true},
		{"negative write timeout", Config{WriteTimeout: -1}, true},
		{"negative idle timeout", Config{IdleTimeout: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"empty audio", apperrors.EmptyAudio(), http.StatusBadRequest, "EMPTY_AUDIO"},
		{"timeout", apperrors.JobTimeout("tencent", "42", 30), http.StatusGatewayTimeout, "TIMEOUT"},
		{"wrapped app error", fmt.Errorf("submit: %w", apperrors.ConfigError("no staging backend")), http.StatusInternalServerError, "CONFIG_ERROR"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tc.err)

			if rr.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if string(body.Code) != tc.wantBody {
				t.Errorf("code = %q, want %q", body.Code, tc.wantBody)
			}
			if body.Error == "" {
				t.Error("error message must be a non-empty string")
			}
		})
	}
}

func TestDefaultEndpoints(t *testing.T) {
	srv := newTestServer()
	srv.ApplyMiddleware()

	status := component.StatusHealthy
	srv.RegisterDefaultEndpoints("asrgate", func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: status}}
	})

	tests := []struct {
		name   string
		path   string
		status component.HealthStatus
		want   int
	}{
		{"healthy", "/health", component.StatusHealthy, http.StatusOK},
		{"degraded stays up", "/health", component.StatusDegraded, http.StatusOK},
		{"unhealthy", "/health", component.StatusUnhealthy, http.StatusServiceUnavailable},
		{"info", "/info", component.StatusHealthy, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status = tc.status
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["service"] != "asrgate" {
				t.Errorf("service = %v", body["service"])
			}
		})
	}
}

func TestComponentLifecycle(t *testing.T) {
	srv := newTestServer()
	srv.ApplyMiddleware()
	srv.GinEngine().POST("/transcribe", func(c *gin.Context) { RespondOK(c, gin.H{"text": "ok"}) })
	srv.RegisterDefaultEndpoints("asrgate", nil)
	sc := NewComponent(srv)
	ctx := context.Background()

	if h := sc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sc.Stop(ctx)

	if h := sc.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Post("http://"+srv.Addr()+"/transcribe", "audio/wav", http.NoBody)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	routes := sc.Routes()
	if len(routes) != 3 || routes[0].Path != "/transcribe" {
		t.Errorf("expected API route first, got %+v", routes)
	}
	if d := sc.Describe(); d.Type != "server" {
		t.Errorf("Describe().Type = %q", d.Type)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/asrgate/gateway.(*Handler).Transcribe-fm", "Handler.Transcribe"},
		{"github.com/kbukum/asrgate/server/endpoint.Health.func1", "health"},
		{"main.handler", "handler"},
	}
	for _, tc := range tests {
		if got := formatHandlerName(tc.in); got != tc.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
