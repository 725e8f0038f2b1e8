package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/staging"
	"github.com/kbukum/asrgate/testutil"
	"github.com/kbukum/asrgate/testutil/fixtures"
	"github.com/kbukum/asrgate/transcription"
	"github.com/kbukum/asrgate/transcription/tencent"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerEngine(gw Transcriber) *gin.Engine {
	engine := gin.New()
	NewHandler(gw).Register(engine)
	return engine
}

type errorBody struct {
	Error     string           `json:"error"`
	Code      errors.ErrorCode `json:"code"`
	Retryable bool             `json:"retryable"`
}

func TestHandler_Transcribe(t *testing.T) {
	rec := &stubInline{name: "whisper", available: true, text: "你好世界"}
	engine := newHandlerEngine(newGateway(Config{MaxAudioSize: 64}, []transcription.Recognizer{rec}))

	for _, path := range []string{"/transcribe", "/api/asr"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(fixtures.WAV(16)))
			req.Header.Set("Content-Type", "audio/wav")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var body Response
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Text != "你好世界" {
				t.Errorf("text = %q", body.Text)
			}
		})
	}
}

func TestHandler_FileModeRoundTrip(t *testing.T) {
	api, srv := newTencentAPI(t)
	api.on(tencent.ActionCreateRecTask, successReply(`"Data":{"TaskId":4242}`))
	api.on(tencent.ActionDescribeTaskStatus, statusReply(1, `{"sentence_info":[{"text":"你好"},{"text":"世界"}]}`))

	waiter := &testutil.RecordingWaiter{}
	temp := newTempStore(t)
	gw := newGateway(Config{},
		[]transcription.Recognizer{newTencent(t, srv, transcription.ModeFile, waiter)},
		WithStager(staging.NewUploader(staging.Config{}, nil, temp)),
	)
	engine := newHandlerEngine(gw)

	req := httptest.NewRequest(http.MethodPost, "/api/asr", bytes.NewReader(fixtures.WAV(64)))
	req.Header.Set("Content-Type", "audio/wav")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `{"text":"你好世界"}` {
		t.Errorf("body = %s", got)
	}
	if api.count(tencent.ActionCreateRecTask) != 1 || api.count(tencent.ActionDescribeTaskStatus) != 1 {
		t.Errorf("calls: create = %d, describe = %d",
			api.count(tencent.ActionCreateRecTask), api.count(tencent.ActionDescribeTaskStatus))
	}
	if waits := waiter.Waits(); len(waits) != 0 {
		t.Errorf("waits = %v, want none before the first poll", waits)
	}

	task := api.body(tencent.ActionCreateRecTask, 0)
	url, _ := task["Url"].(string)
	if task["SourceType"] != float64(0) || !strings.HasSuffix(url, ".wav") {
		t.Errorf("CreateRecTask body = %v", task)
	}
	gw.Wait()
	if got := temp.Deletes(); len(got) != 1 || got[0] != url {
		t.Errorf("Deletes() = %v, want [%s]", got, url)
	}
}

// unknownLength hides the body size from the request.
type unknownLength struct{ io.Reader }

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		recErr     error
		body       io.Reader
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"empty body", nil, bytes.NewReader(nil), http.StatusBadRequest, errors.ErrCodeEmptyAudio},
		{"declared too large", nil, bytes.NewReader(fixtures.Sized(65)), http.StatusBadRequest, errors.ErrCodePayloadTooLarge},
		{"streamed too large", nil, unknownLength{bytes.NewReader(fixtures.Sized(200))}, http.StatusBadRequest, errors.ErrCodePayloadTooLarge},
		{"provider rejected", errors.RemoteRejected("whisper", "E1", "bad audio"), bytes.NewReader(fixtures.WAV(8)), http.StatusInternalServerError, errors.ErrCodeRemoteRejected},
		{"timeout", errors.JobTimeout("tencent", "42", 30), bytes.NewReader(fixtures.WAV(8)), http.StatusGatewayTimeout, errors.ErrCodeTimeout},
		{"plain error", io.ErrUnexpectedEOF, bytes.NewReader(fixtures.WAV(8)), http.StatusInternalServerError, errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stubInline{name: "whisper", available: true, text: "unused", err: tt.recErr}
			engine := newHandlerEngine(newGateway(Config{MaxAudioSize: 64}, []transcription.Recognizer{rec}))

			req := httptest.NewRequest(http.MethodPost, "/transcribe", tt.body)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode || body.Error == "" {
				t.Errorf("body = %+v, want code %s", body, tt.wantCode)
			}
			if tt.wantStatus == http.StatusBadRequest && rec.calls.Load() != 0 {
				t.Error("provider called for a rejected clip")
			}
		})
	}
}

func TestHandler_ReportsServerErrors(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("sentry.NewClient: %v", err)
	}

	tests := []struct {
		name       string
		recErr     error
		body       []byte
		wantEvents int
	}{
		{"server error reported", errors.ConfigError("no provider"), fixtures.WAV(8), 1},
		{"client error not reported", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mu.Lock()
			events = nil
			mu.Unlock()

			rec := &stubInline{name: "whisper", available: true, err: tt.recErr}
			engine := newHandlerEngine(newGateway(Config{}, []transcription.Recognizer{rec}))

			hub := sentry.NewHub(client, sentry.NewScope())
			req := httptest.NewRequest(http.MethodPost, "/transcribe", bytes.NewReader(tt.body))
			req = req.WithContext(sentry.SetHubOnContext(context.Background(), hub))
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			mu.Lock()
			defer mu.Unlock()
			if len(events) != tt.wantEvents {
				t.Fatalf("events = %d, want %d", len(events), tt.wantEvents)
			}
			if tt.wantEvents > 0 && events[0].Tags["code"] != string(errors.ErrCodeConfig) {
				t.Errorf("tags = %v", events[0].Tags)
			}
		})
	}
}

func TestHandler_Routes(t *testing.T) {
	routes := NewHandler(newGateway(Config{}, nil)).Routes()
	if len(routes) != 2 || routes[0].Path != "/transcribe" || routes[1].Path != "/api/asr" {
		t.Errorf("Routes() = %+v", routes)
	}
	for _, r := range routes {
		if r.Method != http.MethodPost {
			t.Errorf("%s method = %s", r.Path, r.Method)
		}
	}
}
