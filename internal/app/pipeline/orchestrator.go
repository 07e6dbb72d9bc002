package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/logging"
	"captionflow/internal/app/media"
	"captionflow/internal/app/tracker"
)

const (
	DefaultLanguage    = "hu"
	DefaultPollTimeout = 10 * time.Minute
)

type Config struct {
	DefaultLanguage string
	// PollTimeout bounds Wait when the caller's context has no earlier deadline.
	PollTimeout time.Duration
}

// Options select the adapter and language of one transcription.
type Options struct {
	// Provider is a registry name; empty selects the default adapter.
	Provider string
	Language string
	// Wait polls asynchronous jobs until they are terminal.
	Wait bool
	// OnUpdate is called after every status probe while waiting.
	OnUpdate func(*provider.Job)
}

type Orchestrator struct {
	resolver *media.Resolver
	registry *provider.Registry
	tracker  *tracker.Tracker
	jobs     *tracker.JobTable
	metrics  *provider.Metrics
	logger   *zap.Logger
	config   Config
}

func NewOrchestrator(
	resolver *media.Resolver,
	registry *provider.Registry,
	tr *tracker.Tracker,
	jobs *tracker.JobTable,
	metrics *provider.Metrics,
	logger *zap.Logger,
	config Config,
) *Orchestrator {
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = DefaultLanguage
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = DefaultPollTimeout
	}
	if tr == nil {
		tr = tracker.New(tracker.DefaultInterval, tracker.WithMetrics(metrics), tracker.WithLogger(logger))
	}
	if jobs == nil {
		jobs = tracker.NewJobTable(tracker.DefaultTTL)
	}
	return &Orchestrator{
		resolver: resolver,
		registry: registry,
		tracker:  tr,
		jobs:     jobs,
		metrics:  metrics,
		logger:   logging.OrNop(logger).Named("pipeline"),
		config:   config,
	}
}

func (o *Orchestrator) Registry() *provider.Registry { return o.registry }

// Transcribe resolves src into something the selected adapter can consume,
// submits it and records the job. With opts.Wait an asynchronous job is
// polled until terminal; the job is recorded before waiting so a timed-out
// caller can still poll it later.
func (o *Orchestrator) Transcribe(ctx context.Context, session *Session, src media.Source, opts Options) (provider.Job, error) {
	adapter, err := o.registry.Get(opts.Provider)
	if err != nil {
		return provider.Job{}, err
	}
	info := adapter.Info()

	credential, err := provider.PickCredential(info, session.Credential, o.registry.Credential(info.Name))
	if err != nil {
		return provider.Job{}, err
	}

	logger := o.logger.With(
		zap.String("request_id", session.RequestID),
		zap.String("provider", info.Name),
		zap.String("source", src.Kind().String()))

	resolved, err := o.resolver.Resolve(ctx, session.Workspace, src, media.ResolveOptions{RequireLocal: !info.AcceptsURL})
	if err != nil {
		logger.Warn("media resolution failed", zap.Error(err))
		return provider.Job{}, err
	}
	defer func() {
		if err := resolved.Release(); err != nil {
			logger.Warn("failed to release media", zap.Error(err))
		}
	}()

	input, err := provider.MediaInputFor(resolved)
	if err != nil {
		return provider.Job{}, err
	}
	if err := provider.CheckMedia(info, input); err != nil {
		return provider.Job{}, err
	}

	language := opts.Language
	if language == "" {
		language = o.config.DefaultLanguage
	}

	started := time.Now()
	job, err := adapter.Submit(ctx, &provider.TranscriptionRequest{
		Media:      input,
		Language:   language,
		Credential: credential,
		Title:      resolved.Title,
	})
	o.metrics.Observe(info.Name, "submit", started, err)
	if err != nil {
		logger.Warn("submit failed", zap.Error(err))
		return provider.Job{}, err
	}
	if job.Title == "" {
		job.Title = resolved.Title
	}
	logger.Info("job submitted",
		zap.String("job_id", job.ID),
		zap.String("state", string(job.State)),
		zap.Bool("local_media", resolved.IsLocal))

	if job.Local {
		return *job, nil
	}
	o.jobs.Put(job)
	if !opts.Wait || job.State.Terminal() {
		return *job, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.config.PollTimeout)
	defer cancel()

	tr := o.tracker
	if opts.OnUpdate != nil {
		tr = tracker.New(o.tracker.Interval(),
			tracker.WithLogger(o.logger),
			tracker.WithMetrics(o.metrics),
			tracker.WithObserver(opts.OnUpdate))
	}
	final, err := o.jobs.With(info.Name, job.ID, func(stored *provider.Job) error {
		return tr.Wait(waitCtx, adapter, stored, credential)
	})
	if err != nil {
		logger.Warn("waiting for job failed", zap.String("job_id", job.ID), zap.Error(err))
		return final, err
	}
	return final, nil
}

// JobStatus performs at most one status probe for a job. Jobs already
// terminal in the table are returned without contacting the provider. An
// empty providerName is looked up in the table, then falls back to the
// default adapter.
func (o *Orchestrator) JobStatus(ctx context.Context, providerName, jobID, credential string) (provider.Job, error) {
	if jobID == "" {
		return provider.Job{}, apperrors.RequiredField("job_id")
	}
	if providerName == "" {
		if name, ok := o.jobs.FindProvider(jobID); ok {
			providerName = name
		} else {
			providerName = o.registry.DefaultName()
		}
	}

	adapter, err := o.registry.Get(providerName)
	if err != nil {
		return provider.Job{}, err
	}
	info := adapter.Info()

	if _, async := adapter.(provider.StatusChecker); !async {
		return provider.Job{}, apperrors.Wrapf(apperrors.ErrJobNotFound,
			"%s answers synchronously and has no job %s", info.Name, jobID)
	}

	if job, ok := o.jobs.Get(info.Name, jobID); ok && job.State.Terminal() {
		return job, nil
	}

	cred, err := provider.PickCredential(info, credential, o.registry.Credential(info.Name))
	if err != nil {
		return provider.Job{}, err
	}

	job, err := o.jobs.With(info.Name, jobID, func(stored *provider.Job) error {
		return o.tracker.Check(ctx, adapter, stored, cred)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Warn("status check failed",
			zap.String("provider", info.Name),
			zap.String("job_id", jobID),
			zap.Error(err))
	}
	return job, err
}
