package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/asrgate/audio"
	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/observability"
	"github.com/kbukum/asrgate/provider"
	"github.com/kbukum/asrgate/resilience"
	"github.com/kbukum/asrgate/staging"
	"github.com/kbukum/asrgate/transcription"
)

const serviceName = "asrgate"

// Terminal outcomes recorded on spans and metrics.
const (
	OutcomeSucceeded   = "succeeded"
	OutcomeFailed      = "failed"
	OutcomeTimedOut    = "timed_out"
	OutcomeConfigError = "config_error"
)

// Phases logged with logger.FieldPhase.
const (
	PhaseSniff     = "sniff"
	PhaseSelect    = "select"
	PhaseStage     = "stage"
	PhaseSubmit    = "submit"
	PhasePoll      = "poll"
	PhaseRecognize = "recognize"
	PhaseRelease   = "release"
)

// Stager uploads clips for file-mode recognizers.
type Stager interface {
	Stage(ctx context.Context, blob audio.Blob, format audio.Format) (*staging.Ref, error)
	Release(ctx context.Context, ref *staging.Ref) error
}

// Cache stores finished transcripts. *redis.TypedStore[transcription.Result]
// satisfies it.
type Cache interface {
	Load(ctx context.Context, key string) (*transcription.Result, error)
	Save(ctx context.Context, key string, val *transcription.Result, ttl time.Duration) error
}

// pollConfigurer is implemented by file recognizers that carry their own
// polling budget.
type pollConfigurer interface {
	PollConfig() transcription.PollConfig
}

// Gateway orchestrates one transcription per call. It is safe for
// concurrent use.
type Gateway struct {
	cfg         Config
	recognizers *provider.Manager[transcription.Recognizer]
	stager      Stager
	cache       Cache
	metrics     *observability.Metrics
	bulkhead    *resilience.Bulkhead
	poll        transcription.PollConfig
	log         *logger.Logger

	releases sync.WaitGroup
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithStager sets the uploader used by file-mode recognizers.
func WithStager(s Stager) Option {
	return func(g *Gateway) { g.stager = s }
}

// WithCache enables the transcript cache.
func WithCache(c Cache) Option {
	return func(g *Gateway) { g.cache = c }
}

// WithMetrics sets the metric instruments. By default they come from the
// global meter provider.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithPollConfig sets the polling budget for recognizers that do not
// provide one.
func WithPollConfig(cfg transcription.PollConfig) Option {
	return func(g *Gateway) { g.poll = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New creates a Gateway over the given recognizers.
func New(cfg Config, recognizers *provider.Manager[transcription.Recognizer], opts ...Option) *Gateway {
	cfg.ApplyDefaults()
	g := &Gateway{
		cfg:         cfg,
		recognizers: recognizers,
		log:         logger.Get("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		if m, err := observability.NewMetrics(observability.Meter(serviceName)); err == nil {
			g.metrics = m
		} else {
			g.log.Warn("metrics disabled", logger.ErrorFields("metrics", err))
		}
	}
	g.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "transcribe",
		MaxConcurrent: cfg.MaxConcurrentJobs,
		MaxWait:       cfg.QueueWait,
		OnReject: func(name string, reason error) {
			g.log.Warn("transcription rejected, too many in flight", logger.Fields(
				"bulkhead", name,
				"max_concurrent", cfg.MaxConcurrentJobs,
				"reason", reason.Error(),
			))
		},
	})
	return g
}

// MaxAudioSize returns the largest clip accepted, in bytes.
func (g *Gateway) MaxAudioSize() int64 { return g.cfg.MaxAudioSize }

// Transcribe runs one clip through sniffing, optional staging and
// recognition. Empty and oversized clips are rejected before any I/O.
func (g *Gateway) Transcribe(ctx context.Context, blob audio.Blob) (*transcription.Result, error) {
	if blob.Empty() {
		return nil, errors.EmptyAudio()
	}
	if blob.Size() > g.cfg.MaxAudioSize {
		return nil, errors.PayloadTooLarge(blob.Size(), g.cfg.MaxAudioSize)
	}

	res, err := resilience.Do(ctx, g.bulkhead, func() (*transcription.Result, error) {
		return g.transcribe(ctx, blob)
	})
	switch {
	case stderrors.Is(err, resilience.ErrBulkheadFull), stderrors.Is(err, resilience.ErrBulkheadTimeout):
		return nil, errors.ServiceUnavailable("transcription service").WithCause(err)
	case err != nil && !errors.IsAppError(err) && ctx.Err() != nil:
		return nil, errors.Timeout("transcribe").WithCause(err)
	}
	return res, err
}

func (g *Gateway) transcribe(ctx context.Context, blob audio.Blob) (*transcription.Result, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanTranscribe, "transcribe", g.metrics)
	span := op.Span()
	log := g.log.WithContext(ctx)

	format := g.sniff(ctx, blob)
	span.SetAttributes(
		attribute.String(observability.AttrFormat, format.String()),
		attribute.Int64(observability.AttrAudioBytes, blob.Size()),
	)

	rec, err := g.recognizers.Get(ctx)
	if err != nil {
		err = errors.ConfigError("no speech recognition provider is configured").WithCause(err)
		g.finish(ctx, op, "", err)
		return nil, err
	}
	span.SetAttributes(attribute.String(observability.AttrProvider, rec.Name()))
	log.Debug("provider selected", logger.Fields(
		logger.FieldPhase, PhaseSelect,
		logger.FieldProvider, rec.Name(),
		logger.FieldMode, string(rec.Mode()),
	))

	key := cacheKey(blob.Data, rec.Name())
	if cached := g.lookup(ctx, key); cached != nil {
		span.SetAttributes(attribute.Bool(observability.AttrCacheHit, true))
		g.finish(ctx, op, rec.Name(), nil)
		return cached, nil
	}

	var res *transcription.Result
	switch rec.Mode() {
	case transcription.ModeFile:
		res, err = g.recognizeFile(ctx, rec, blob, format)
	default:
		res, err = g.recognizeInline(ctx, rec, blob, format)
	}
	g.finish(ctx, op, rec.Name(), err)
	if err != nil {
		return nil, err
	}

	g.store(ctx, key, res)
	return res, nil
}

func (g *Gateway) sniff(ctx context.Context, blob audio.Blob) audio.Format {
	_, span := observability.StartSpan(ctx, observability.SpanSniff)
	defer span.End()

	format := blob.Format()
	span.SetAttributes(attribute.String(observability.AttrFormat, format.String()))
	g.log.WithContext(ctx).Info("audio received", logger.Fields(
		logger.FieldPhase, PhaseSniff,
		logger.FieldFormat, format.String(),
		logger.FieldMimeType, blob.MIMEHint,
		logger.FieldAudioBytes, blob.Size(),
	))
	if g.metrics != nil {
		g.metrics.RecordAudio(ctx, format.String(), blob.Size())
	}
	return format
}

func (g *Gateway) recognizeInline(ctx context.Context, rec transcription.Recognizer, blob audio.Blob, format audio.Format) (*transcription.Result, error) {
	inline, ok := rec.(transcription.InlineRecognizer)
	if !ok {
		return nil, errors.ConfigError(rec.Name() + " does not support inline recognition")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanRecognize)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrProvider, rec.Name()))

	g.log.WithContext(ctx).Debug("recognizing inline", logger.Fields(
		logger.FieldPhase, PhaseRecognize,
		logger.FieldProvider, rec.Name(),
	))
	res, err := inline.Recognize(ctx, transcription.InlineRequest{Audio: blob.Data, Format: format})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return res, nil
}

func (g *Gateway) recognizeFile(ctx context.Context, rec transcription.Recognizer, blob audio.Blob, format audio.Format) (*transcription.Result, error) {
	file, ok := rec.(transcription.FileRecognizer)
	if !ok {
		return nil, errors.ConfigError(rec.Name() + " does not support file recognition")
	}

	ref, err := g.stage(ctx, blob, format)
	if err != nil {
		return nil, err
	}
	defer g.release(ctx, ref)

	jobID, err := g.submit(ctx, file, ref, format)
	if err != nil {
		return nil, err
	}

	job, err := g.await(ctx, file, jobID)
	if err != nil {
		return nil, err
	}
	return transcription.JobResult(rec.Name(), job, format), nil
}

func (g *Gateway) stage(ctx context.Context, blob audio.Blob, format audio.Format) (*staging.Ref, error) {
	if g.stager == nil {
		return nil, errors.ConfigError("no staging storage is configured for file recognition")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanStage)
	defer span.End()

	ref, err := g.stager.Stage(ctx, blob, format)
	if err != nil {
		observability.SetSpanError(ctx, err)
		backend, _ := errors.Wrap(err).Details["backend"].(string)
		g.recordStaging(ctx, backend, "failed")
		return nil, err
	}
	if ref == nil {
		err := errors.ConfigError("no staging storage is configured for file recognition")
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.String(observability.AttrStagingBackend, string(ref.Backend)))
	g.recordStaging(ctx, string(ref.Backend), "succeeded")
	g.log.WithContext(ctx).Info("audio staged", logger.Fields(
		logger.FieldPhase, PhaseStage,
		logger.FieldStagingBackend, string(ref.Backend),
		"url", logger.RedactURL(ref.URL),
	))
	return ref, nil
}

func (g *Gateway) submit(ctx context.Context, rec transcription.FileRecognizer, ref *staging.Ref, format audio.Format) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrProvider, rec.Name()))

	jobID, err := rec.Submit(ctx, transcription.FileRequest{URL: ref.URL, Format: format})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return "", err
	}
	span.SetAttributes(attribute.String(observability.AttrJobID, jobID))
	g.log.WithContext(ctx).Info("job submitted", logger.Fields(
		logger.FieldPhase, PhaseSubmit,
		logger.FieldProvider, rec.Name(),
		logger.FieldJobID, jobID,
	))
	return jobID, nil
}

func (g *Gateway) await(ctx context.Context, rec transcription.FileRecognizer, jobID string) (*transcription.Job, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPoll)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrJobID, jobID))

	cfg := g.poll
	if pc, ok := rec.(pollConfigurer); ok {
		cfg = pc.PollConfig()
	}
	job, attempts, err := transcription.Await(ctx, rec, jobID, cfg)
	span.SetAttributes(attribute.Int(observability.AttrPollAttempts, attempts))
	if g.metrics != nil {
		g.metrics.RecordPollAttempts(ctx, rec.Name(), attempts)
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	g.log.WithContext(ctx).Debug("job finished", logger.Fields(
		logger.FieldPhase, PhasePoll,
		logger.FieldJobID, jobID,
		logger.FieldAttempt, attempts,
	))
	return job, nil
}

// release deletes a temporary clip in the background. It runs on a context
// detached from the request so a finished or cancelled request does not
// abort the cleanup.
func (g *Gateway) release(ctx context.Context, ref *staging.Ref) {
	if !ref.Temporary() {
		return
	}
	detached := context.WithoutCancel(ctx)
	g.releases.Add(1)
	go func() {
		defer g.releases.Done()
		ctx, cancel := context.WithTimeout(detached, g.cfg.ReleaseTimeout)
		defer cancel()
		ctx, span := observability.StartSpan(ctx, observability.SpanRelease)
		defer span.End()

		if err := g.stager.Release(ctx, ref); err != nil {
			observability.SetSpanError(ctx, err)
			g.log.WithContext(ctx).Warn("staged audio release failed", logger.MergeWithError(logger.Fields(
				logger.FieldPhase, PhaseRelease,
				logger.FieldStagingBackend, string(ref.Backend),
			), err))
			return
		}
		g.log.WithContext(ctx).Debug("staged audio released", logger.Fields(
			logger.FieldPhase, PhaseRelease,
			logger.FieldStagingBackend, string(ref.Backend),
		))
	}()
}

// Wait blocks until every background release has finished.
func (g *Gateway) Wait() {
	g.releases.Wait()
}

// Drain is Wait bounded by ctx.
func (g *Gateway) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.releases.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) lookup(ctx context.Context, key string) *transcription.Result {
	if g.cache == nil {
		return nil
	}
	res, err := g.cache.Load(ctx, key)
	if err != nil {
		g.log.WithContext(ctx).Warn("transcript cache lookup failed", logger.ErrorFields("cache_load", err))
		return nil
	}
	if g.metrics != nil {
		g.metrics.RecordCacheLookup(ctx, res != nil)
	}
	if res != nil {
		g.log.WithContext(ctx).Info("transcript served from cache", logger.Fields(
			logger.FieldCacheHit, true,
			logger.FieldProvider, res.Provider,
		))
	}
	return res
}

func (g *Gateway) store(ctx context.Context, key string, res *transcription.Result) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Save(ctx, key, res, g.cfg.CacheTTL); err != nil {
		g.log.WithContext(ctx).Warn("transcript cache store failed", logger.ErrorFields("cache_save", err))
	}
}

// finish records the terminal state of one transcription.
func (g *Gateway) finish(ctx context.Context, op *observability.Operation, providerName string, err error) {
	outcome := Outcome(err)
	fields := logger.Fields(
		logger.FieldProvider, providerName,
		logger.FieldStatus, outcome,
		"duration_ms", op.Elapsed().Milliseconds(),
	)
	log := g.log.WithContext(ctx)
	if err != nil {
		appErr := errors.Wrap(err)
		fields["code"] = string(appErr.Code)
		if jobID, ok := appErr.Details["job_id"]; ok {
			fields[logger.FieldJobID] = jobID
		}
		log.Warn("transcription failed", logger.MergeWithError(fields, err))
	} else {
		log.Info("transcription finished", fields)
	}

	if g.metrics != nil {
		g.metrics.RecordTranscription(ctx, providerName, outcome, op.Elapsed())
		if err != nil {
			g.metrics.RecordError(ctx, string(errors.Wrap(err).Code), "gateway")
		}
	}
	op.End(ctx, outcome, err)
}

func (g *Gateway) recordStaging(ctx context.Context, backend, status string) {
	if g.metrics != nil {
		g.metrics.RecordStaging(ctx, backend, status)
	}
}

// Outcome maps a transcription error to its terminal state.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.HasCode(err, errors.ErrCodeTimeout):
		return OutcomeTimedOut
	case errors.HasCode(err, errors.ErrCodeConfig):
		return OutcomeConfigError
	default:
		return OutcomeFailed
	}
}

func cacheKey(data []byte, providerName string) string {
	sum := sha256.Sum256(data)
	return providerName + ":" + hex.EncodeToString(sum[:])
}
