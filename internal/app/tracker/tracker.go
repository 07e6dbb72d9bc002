// Package tracker drives asynchronous provider jobs to a terminal state.
package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/logging"
)

const (
	DefaultInterval = 3 * time.Second

	// FailureFallback is reported when a provider fails a job without saying why.
	FailureFallback = "transcription failed"
)

// Tracker polls provider status. It holds no per-job state; callers pass the
// Job they own and the tracker mutates it.
type Tracker struct {
	interval time.Duration
	logger   *zap.Logger
	metrics  *provider.Metrics
	observer func(*provider.Job)
}

type Option func(*Tracker)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

func WithMetrics(m *provider.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithObserver registers fn to be called after every probe that Wait makes.
func WithObserver(fn func(*provider.Job)) Option {
	return func(t *Tracker) { t.observer = fn }
}

func New(interval time.Duration, opts ...Option) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Tracker{interval: interval}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.OrNop(t.logger).Named("tracker")
	return t
}

func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Check performs one status probe. Terminal jobs are returned untouched.
// When the provider reports Done the result is fetched once and attached;
// if that fetch fails the job stays non-terminal and the error is returned.
func (t *Tracker) Check(ctx context.Context, adapter provider.Transcriber, job *provider.Job, credential string) error {
	if job == nil {
		return apperrors.RequiredField("job")
	}
	if job.State.Terminal() {
		return nil
	}
	checker, ok := adapter.(provider.StatusChecker)
	if !ok {
		return fmt.Errorf("provider %s cannot report job status", adapter.Info().Name)
	}

	started := time.Now()
	report, err := checker.Status(ctx, job.ID, credential)
	t.metrics.Observe(job.Provider, "status", started, err)
	if err != nil {
		return err
	}

	switch report.State {
	case provider.StateSubmitted, provider.StateRunning:
		job.State = report.State
	case provider.StateDone:
		started = time.Now()
		doc, err := adapter.FetchResult(ctx, job, credential)
		t.metrics.Observe(job.Provider, "fetch", started, err)
		if err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			return &apperrors.ProviderError{Provider: job.Provider, Detail: "malformed transcript: " + err.Error()}
		}
		job.Document = doc
		job.State = provider.StateDone
	case provider.StateFailed, provider.StateRejected:
		job.State = report.State
		job.Error = report.Message
		if job.Error == "" {
			job.Error = FailureFallback
		}
	default:
		job.State = provider.StateFailed
		job.Error = FailureFallback
	}
	job.UpdatedAt = time.Now()

	t.logger.Debug("job probed",
		zap.String("provider", job.Provider),
		zap.String("job_id", job.ID),
		zap.String("state", string(job.State)))
	return nil
}

// Wait calls Check every interval until the job is terminal or ctx ends.
// Retryable provider errors are logged and polling continues.
func (t *Tracker) Wait(ctx context.Context, adapter provider.Transcriber, job *provider.Job, credential string) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		err := t.Check(ctx, adapter, job, credential)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !apperrors.IsRetryable(err) {
				return err
			}
			t.logger.Warn("status probe failed, retrying",
				zap.String("provider", job.Provider),
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
		if t.observer != nil {
			t.observer(job)
		}
		if job.State.Terminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
