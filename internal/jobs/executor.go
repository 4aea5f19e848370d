package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/metrics"
	"server/internal/providers/hunyuan"
	"server/internal/ws"
)

// Generator is the external capability that turns an input image and
// parameters into a model artifact.
type Generator interface {
	Generate(ctx context.Context, image []byte, params hunyuan.Params) ([]byte, error)
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Store           *Store
	Generator       Generator
	Hub             *ws.Hub
	Logger          infra.Logger
	GenerateTimeout time.Duration
	MaxConcurrent   int
}

// Executor runs jobs to completion against the generator, updating the store
// at each phase transition. Each scheduled job executes in its own goroutine,
// bounded by a semaphore, and communicates back only through the store.
type Executor struct {
	store     *Store
	generator Generator
	hub       *ws.Hub
	logger    infra.Logger
	timeout   time.Duration
	sem       chan struct{}
}

func NewExecutor(opts ExecutorOptions) *Executor {
	timeout := opts.GenerateTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	concurrent := opts.MaxConcurrent
	if concurrent <= 0 {
		concurrent = 4
	}
	return &Executor{
		store:     opts.Store,
		generator: opts.Generator,
		hub:       opts.Hub,
		logger:    opts.Logger,
		timeout:   timeout,
		sem:       make(chan struct{}, concurrent),
	}
}

// Schedule hands the job off for independent execution and returns
// immediately. There is no cancellation path: once scheduled, the job runs to
// a terminal state or the process exits.
func (e *Executor) Schedule(id string) {
	metrics.JobsSubmittedTotal.Inc()
	go func() {
		e.sem <- struct{}{}
		defer func() { <-e.sem }()
		e.run(id)
	}()
}

// RunSync executes the generation inline for the synchronous path: no store
// record is created and the artifact (or error) goes straight back to the
// caller.
func (e *Executor) RunSync(ctx context.Context, req domain.GenerateRequest) ([]byte, error) {
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", domain.ErrInvalidInput, err)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	artifact, err := e.generator.Generate(ctx, image, paramsFor(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
	}
	metrics.SyncGenerationsTotal.Inc()
	return artifact, nil
}

func (e *Executor) run(id string) {
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()
	start := time.Now()

	job, err := e.store.Get(id)
	if err != nil {
		e.logger.Error().Err(err).Str("job_id", id).Msg("executor: scheduled job missing")
		return
	}

	e.commit(id, func(j *domain.Job) {
		j.State = domain.JobStateProcessing
		j.Progress = 10
		j.Message = "Starting model generation"
	})

	image, err := base64.StdEncoding.DecodeString(job.Input.Image)
	if err != nil {
		// Malformed input cannot succeed on retry.
		e.fail(id, start, fmt.Errorf("decode image: %w", err))
		return
	}

	e.commit(id, func(j *domain.Job) {
		j.Progress = 30
		j.Message = "Calling generation backend"
	})

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	artifact, err := e.generator.Generate(ctx, image, paramsFor(job.Input))
	if err != nil {
		e.fail(id, start, err)
		return
	}

	e.commit(id, func(j *domain.Job) {
		j.Progress = 80
		j.Message = "Processing model data"
	})

	e.commit(id, func(j *domain.Job) {
		j.State = domain.JobStateCompleted
		j.Progress = 100
		j.Message = "Model generation completed"
		j.Result = artifact
		j.CompletedAt = time.Now().UTC()
	})

	metrics.JobsCompletedTotal.Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	e.logger.Info().
		Str("job_id", id).
		Int("artifact_bytes", len(artifact)).
		Dur("duration", time.Since(start)).
		Msg("executor: job completed")
}

func (e *Executor) fail(id string, start time.Time, cause error) {
	e.commit(id, func(j *domain.Job) {
		j.State = domain.JobStateFailed
		j.Progress = 0
		j.Message = "Model generation failed"
		j.Error = cause.Error()
	})
	metrics.JobsFailedTotal.Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	e.logger.Error().Err(cause).Str("job_id", id).Msg("executor: job failed")
}

// commit applies one phase transition and makes it visible to concurrent
// readers before the next step begins.
func (e *Executor) commit(id string, mutate func(*domain.Job)) {
	snap, err := e.store.Update(id, mutate)
	if err != nil {
		e.logger.Error().Err(err).Str("job_id", id).Msg("executor: store update failed")
		return
	}
	ws.BroadcastJobUpdate(e.hub, jobUpdate{
		UID:      snap.ID,
		Status:   string(snap.State),
		Progress: snap.Progress,
		Message:  snap.Message,
	})
}

type jobUpdate struct {
	UID      string `json:"uid"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

func paramsFor(req domain.GenerateRequest) hunyuan.Params {
	guidance := domain.DefaultGuidanceScale
	if req.GuidanceScale != nil {
		guidance = *req.GuidanceScale
	}
	return hunyuan.Params{
		Caption:          req.Caption,
		Seed:             req.Seed,
		OctreeResolution: req.OctreeResolution,
		InferenceSteps:   req.NumInferenceSteps,
		GuidanceScale:    guidance,
		MCAlgo:           req.MCAlgo,
		Texture:          req.Texture,
		OutputType:       req.Type,
	}
}
