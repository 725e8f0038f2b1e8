package tencent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/httpclient"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/resilience"
	"github.com/kbukum/asrgate/signer"
	"github.com/kbukum/asrgate/transcription"
	"github.com/kbukum/asrgate/util"
)

// ProviderName is the registered name of the Tencent recognizer.
const ProviderName = "tencent"

// API actions.
const (
	ActionSentenceRecognition = "SentenceRecognition"
	ActionCreateRecTask       = "CreateRecTask"
	ActionDescribeTaskStatus  = "DescribeTaskStatus"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Source types: 0 fetches audio from Url, 1 reads it from Data.
const (
	sourceURL  = 0
	sourceData = 1
)

// Client talks to the Tencent Cloud ASR API. It is safe for concurrent use;
// the skew-corrected clock is its only mutable state.
type Client struct {
	cfg    Config
	cred   signer.Credential
	signer *signer.Signer
	clock  signer.Clock
	http   *httpclient.Client
	host   string
	log    *logger.Logger
}

var (
	_ transcription.InlineRecognizer = (*Client)(nil)
	_ transcription.FileRecognizer   = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithClock replaces the skew-corrected clock.
func WithClock(c signer.Clock) Option {
	return func(cl *Client) { cl.clock = c }
}

// WithHTTPClient replaces the pooled transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(cl *Client) { cl.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient creates a Client. Missing credentials are not an error here.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tencent: %w", err)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("tencent: invalid endpoint %q", cfg.Endpoint)
	}

	s := signer.NewTC3Signer(cfg.Service)
	c := &Client{
		cfg:    cfg,
		cred:   cfg.Credential(),
		signer: s,
		host:   u.Host,
		log:    logger.Get("tencent"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		hcfg := httpclient.Config{BaseURL: cfg.Endpoint, Timeout: cfg.Timeout}
		if cfg.CircuitBreaker {
			hcfg.CircuitBreaker = httpclient.DefaultCircuitBreakerConfig("tencent-asr")
		}
		if c.http, err = httpclient.New(hcfg); err != nil {
			return nil, fmt.Errorf("tencent: %w", err)
		}
	}
	if c.clock == nil {
		if cfg.DisableClockSync {
			c.clock = signer.SystemClock{}
		} else {
			c.clock = signer.NewSkewClock(signer.SkewClockConfig{
				Probe:  signer.HTTPDateProbe(c.http, cfg.Endpoint),
				MaxAge: cfg.ClockMaxAge,
				Log:    c.log,
			})
		}
	}

	if err := cfg.CredentialWarning(); err != nil {
		c.log.Warn("tencent credentials incomplete", logger.Fields(
			logger.FieldError, err.Error(),
			logger.FieldSecretID, logger.MaskSecret(cfg.SecretID),
		))
	}
	c.log.Info("tencent asr client ready", logger.Fields(
		logger.FieldMode, string(cfg.Mode),
		"region", cfg.Region,
		"configured", cfg.Configured(),
		logger.FieldSecretID, logger.MaskSecret(cfg.SecretID),
	))
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Mode returns the configured capability.
func (c *Client) Mode() transcription.Mode { return c.cfg.Mode }

// IsAvailable reports whether credentials are configured. It makes no
// network call.
func (c *Client) IsAvailable(context.Context) bool { return c.cfg.Configured() }

// PollConfig returns the polling policy for file-mode jobs.
func (c *Client) PollConfig() transcription.PollConfig { return c.cfg.Poll }

func (c *Client) ready() error {
	if !c.cfg.Configured() {
		return errors.ConfigError("Tencent Cloud ASR credentials are not configured.")
	}
	return nil
}

// Recognize transcribes a clip with SentenceRecognition.
func (c *Client) Recognize(ctx context.Context, req transcription.InlineRequest) (*transcription.Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if size := int64(len(req.Audio)); size > c.cfg.InlineLimit {
		return nil, errors.PayloadTooLarge(size, c.cfg.InlineLimit)
	}
	key := req.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("audio_%d_%s", time.Now().UnixMilli(), util.RandomSuffix(6))
	}

	var out sentenceRecognitionResponse
	err := c.call(ctx, ActionSentenceRecognition, sentenceRecognitionRequest{
		EngSerViceType: c.cfg.EngineType,
		SourceType:     sourceData,
		VoiceFormat:    req.Format.String(),
		UsrAudioKey:    key,
		Data:           base64.StdEncoding.EncodeToString(req.Audio),
		DataLen:        len(req.Audio),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Result == nil {
		return nil, errors.MalformedResponse(ProviderName, "missing Result")
	}

	text, segments := transcription.FlattenResult(*out.Result)
	return &transcription.Result{
		Text:     text,
		Segments: segments,
		Provider: ProviderName,
		Format:   req.Format,
		Duration: float64(out.AudioDuration) / 1000,
	}, nil
}

// Submit creates a recognition task for staged audio and returns its id.
func (c *Client) Submit(ctx context.Context, req transcription.FileRequest) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	var out createRecTaskResponse
	err := c.call(ctx, ActionCreateRecTask, createRecTaskRequest{
		EngineModelType: c.cfg.EngineType,
		ChannelNum:      1,
		ResTextFormat:   0,
		SourceType:      sourceURL,
		URL:             req.URL,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Data == nil || out.Data.TaskID == nil {
		return "", errors.MalformedResponse(ProviderName, "missing Data.TaskId")
	}
	jobID := strconv.FormatUint(*out.Data.TaskID, 10)
	c.log.WithContext(ctx).Info("recognition task created", logger.Fields(
		logger.FieldProvider, ProviderName,
		logger.FieldJobID, jobID,
		logger.FieldFormat, req.Format.String(),
	))
	return jobID, nil
}

// Poll fetches the state of a recognition task.
func (c *Client) Poll(ctx context.Context, jobID string) (*transcription.Job, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	taskID, err := strconv.ParseUint(jobID, 10, 64)
	if err != nil {
		return nil, errors.InvalidInput("job_id", "task id must be numeric")
	}

	var out describeTaskStatusResponse
	if err := c.call(ctx, ActionDescribeTaskStatus, describeTaskStatusRequest{TaskID: taskID}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil || out.Data.Status == nil {
		return nil, errors.MalformedResponse(ProviderName, "missing Data.Status")
	}

	job := &transcription.Job{ID: jobID, Status: transcription.JobRunning}
	switch *out.Data.Status {
	case c.cfg.StatusSucceeded:
		job.Status = transcription.JobSucceeded
		job.Result = out.Data.Result
	case c.cfg.StatusFailed:
		job.Status = transcription.JobFailed
		job.ErrorCode = "TaskFailed"
		job.ErrorMessage = out.Data.ErrorMsg
	}
	return job, nil
}

// call signs and sends one action, retrying once after a clock resync when
// the API rejects the signature timestamp.
func (c *Client) call(ctx context.Context, action string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode %s: %w", action, err))
	}
	if sc, ok := c.clock.(*signer.SkewClock); ok {
		// Failures keep the previous offset and are logged by the clock.
		_ = sc.Refresh(ctx)
	}

	resp, err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts: 2,
		RetryIf:     errors.IsClockSkew,
		OnRetry: func(ctx context.Context, _ int, cause error, _ time.Duration) error {
			c.log.WithContext(ctx).Warn("signature rejected, resyncing clock", logger.MergeWithError(
				logger.Fields(logger.FieldProvider, ProviderName, logger.FieldOperation, action), cause))
			if err := c.clock.ForceResync(ctx); err != nil {
				c.log.Warn("clock resync failed", logger.ErrorFields("resync", err))
			}
			return nil
		},
	}, func() (json.RawMessage, error) {
		return c.send(ctx, action, body)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return errors.MalformedResponse(ProviderName, fmt.Sprintf("%s: %v", action, err))
	}
	return nil
}

// send performs a single signed round trip and returns the Response object.
func (c *Client) send(ctx context.Context, action string, body []byte) (json.RawMessage, error) {
	signed, err := c.signer.Build(c.cred, signer.CanonicalInput{
		Method:      http.MethodPost,
		Host:        c.host,
		Path:        "/",
		ContentType: contentTypeJSON,
		Payload:     body,
	}, c.clock.Now().Unix(), action, c.cfg.Version, c.cfg.Region)
	if err != nil {
		return nil, errors.ConfigError("Tencent Cloud ASR credentials are not configured.").WithCause(err)
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  signed.Method,
		Path:    signed.Path,
		Headers: signed.HeaderMap(),
		Body:    signed.Body,
	})
	if resp == nil {
		return nil, transportError(action, err)
	}

	o := decodeEnvelope(resp.Body)
	if o.kind == outcomeMalformed && !resp.IsSuccess() {
		return nil, errors.MalformedResponse(ProviderName, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	if o.kind != outcomeSuccess {
		c.log.WithContext(ctx).Warn("tencent request failed", logger.Fields(
			logger.FieldProvider, ProviderName,
			logger.FieldOperation, action,
			"provider_code", o.code,
			"request_id", o.requestID,
		))
		return nil, o.err()
	}
	return o.response, nil
}

func transportError(action string, err error) error {
	if httpclient.IsTimeout(err) {
		return errors.Timeout(action).WithCause(err)
	}
	return errors.ServiceUnavailable("speech recognition service").WithCause(err)
}
