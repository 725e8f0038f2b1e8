package whisper

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/kbukum/asrgate/audio"
	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/httpclient"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/transcription"
)

// ProviderName is how the gateway refers to this recognizer.
const ProviderName = "whisper"

const (
	probeTimeout = 2 * time.Second
	// maxReasonLen bounds the sidecar error text carried into RemoteRejected.
	maxReasonLen = 200
)

// Provider posts clips to the sidecar as multipart forms.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

var _ transcription.InlineRecognizer = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client, log: logger.Get(ProviderName)}, nil
}

func (p *Provider) Name() string             { return ProviderName }
func (p *Provider) Mode() transcription.Mode { return transcription.ModeInline }

// IsAvailable probes GET /health with a short deadline.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

func (p *Provider) Recognize(ctx context.Context, req transcription.InlineRequest) (*transcription.Result, error) {
	upload := httpclient.FileField{
		FieldName:   "audio",
		FileName:    "audio." + req.Format.Extension(),
		ContentType: req.Format.ContentType(),
		Data:        req.Audio,
	}
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body:   &httpclient.MultipartBody{Fields: p.cfg.form(), Files: []httpclient.FileField{upload}},
	})
	if err != nil {
		return nil, p.failure(ctx, resp, err)
	}

	var body response
	if err := resp.JSON(&body); err != nil {
		return nil, errors.MalformedResponse(ProviderName, err.Error())
	}
	return body.result(req.Format), nil
}

// failure maps a failed sidecar call onto the gateway taxonomy.
func (p *Provider) failure(ctx context.Context, resp *httpclient.Response, err error) error {
	switch {
	case resp != nil:
		p.log.WithContext(ctx).Warn("whisper request rejected", logger.Fields(
			logger.FieldProvider, ProviderName,
			logger.FieldStatus, resp.StatusCode,
		))
		return errors.RemoteRejected(ProviderName, fmt.Sprintf("HTTP %d", resp.StatusCode), truncate(string(resp.Body), maxReasonLen))
	case httpclient.IsTimeout(err):
		return errors.Timeout("whisper transcribe").WithCause(err)
	default:
		return errors.ServiceUnavailable("whisper sidecar").WithCause(err)
	}
}

// response is the sidecar's JSON answer. Times are in seconds.
type response struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (r *response) result(format audio.Format) *transcription.Result {
	out := &transcription.Result{
		Text:     r.Text,
		Provider: ProviderName,
		Format:   format,
		Language: r.Language,
		Segments: make([]transcription.Segment, 0, len(r.Segments)),
	}
	for _, s := range r.Segments {
		out.Segments = append(out.Segments, transcription.Segment{Start: s.Start, End: s.End, Text: s.Text})
		out.Duration = s.End
	}
	return out
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
