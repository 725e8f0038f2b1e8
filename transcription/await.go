package transcription

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/asrgate/audio"
	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/resilience"
)

// Polling defaults: one immediate check, then one every two seconds, for at
// most a minute of waiting.
const (
	DefaultPollInterval    = 2 * time.Second
	DefaultPollMaxAttempts = 30
)

// PollConfig bounds Await.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	// Wait replaces the timer between checks. Tests inject a recorder.
	Wait resilience.WaitFunc `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in the default interval and attempt budget.
func (c *PollConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultPollMaxAttempts
	}
}

// Await polls jobID until it succeeds, fails or the attempt budget runs out.
// A failed job is returned as RemoteRejected, an exhausted budget as a
// Timeout naming the job. The number of polls is returned in every case.
func Await(ctx context.Context, rec FileRecognizer, jobID string, cfg PollConfig) (*Job, int, error) {
	cfg.ApplyDefaults()
	log := logger.Get("transcription").WithContext(ctx)

	job, attempts, err := resilience.Poll(ctx, resilience.PollConfig{
		Interval:    cfg.Interval,
		MaxAttempts: cfg.MaxAttempts,
		Wait:        cfg.Wait,
	}, func(ctx context.Context, attempt int) (*Job, bool, error) {
		job, err := rec.Poll(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		log.Debug("job status", logger.Fields(
			logger.FieldProvider, rec.Name(),
			logger.FieldJobID, jobID,
			logger.FieldAttempt, attempt,
			logger.FieldStatus, string(job.Status),
		))
		return job, job.Status.Terminal(), nil
	})

	switch {
	case stderrors.Is(err, resilience.ErrPollExhausted):
		return nil, attempts, errors.JobTimeout(rec.Name(), jobID, attempts)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, attempts, errors.Timeout("poll").WithCause(err)
	case err != nil:
		return nil, attempts, err
	}

	if job.Status == JobFailed {
		return job, attempts, errors.RemoteRejected(rec.Name(), job.ErrorCode, job.ErrorMessage).
			WithDetail("job_id", jobID)
	}
	return job, attempts, nil
}

// RecognizeFile submits staged audio, awaits the job and flattens its result.
func RecognizeFile(ctx context.Context, rec FileRecognizer, req FileRequest, cfg PollConfig) (*Result, error) {
	jobID, err := rec.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	job, _, err := Await(ctx, rec, jobID, cfg)
	if err != nil {
		return nil, err
	}
	return JobResult(rec.Name(), job, req.Format), nil
}

// JobResult flattens a succeeded job into a Result.
func JobResult(provider string, job *Job, format audio.Format) *Result {
	text, segments := FlattenResult(job.Result)
	return &Result{
		Text:     text,
		Segments: segments,
		Provider: provider,
		JobID:    job.ID,
		Format:   format,
	}
}
