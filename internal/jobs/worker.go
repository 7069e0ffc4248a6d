// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/metrics"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// Job outcomes recorded in metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeInvalid = "invalid"
	OutcomeRetry   = "retry"
)

// Recommender runs the recommendation pipeline. *recommend.Engine
// implements it.
type Recommender interface {
	Recommend(ctx context.Context, req *recommend.Request) (*recommend.Result, error)
}

// Worker consumes job messages. Per user it holds training_lock:{user_id}
// for the duration of a run, then writes the result and run metadata.
type Worker struct {
	engine       Recommender
	store        cache.Store
	lock         *cache.TrainingLock
	timeout      time.Duration
	resultTTL    time.Duration
	modelVersion string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewWorker creates a worker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWorker(engine Recommender, store cache.Store, cfg *Config, logger zerolog.Logger) *Worker {
	return &Worker{
		engine:       engine,
		store:        store,
		lock:         cache.NewTrainingLock(store, cfg.LockTTL),
		timeout:      cfg.Timeout,
		resultTTL:    cfg.ResultTTL,
		modelVersion: cfg.ModelVersion,
		logger:       logger.With().Str("component", "job-worker").Logger(),
		now:          time.Now,
	}
}

// Handle processes one message. A nil return acknowledges it; an error
// hands it back to the router for retry.
//
// Only store failures and shutdown cancellation are retried. Bad input and
// data-integrity errors are recorded as a failed result and acknowledged,
// and so is a job whose user already has a run in progress.
func (w *Worker) Handle(msg *message.Message) error {
	start := time.Now()

	job, err := DecodeMessage(msg)
	if err != nil {
		w.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed job")
		metrics.RecordJobOutcome(OutcomeInvalid, time.Since(start))
		return nil
	}

	ctx := logging.ContextWithLogger(msg.Context(), w.logger)
	ctx = logging.ContextWithUserID(ctx, job.UserID)
	if job.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, job.CorrelationID)
	}
	log := logging.CtxWith(ctx).Str("job_id", job.ID).Logger()

	outcome, err := w.process(ctx, job, &log)
	if err != nil {
		log.Warn().Err(err).Msg("job will be retried")
		metrics.RecordJobOutcome(OutcomeRetry, time.Since(start))
		return err
	}
	metrics.RecordJobOutcome(outcome, time.Since(start))
	return nil
}

func (w *Worker) process(ctx context.Context, job *Job, log *zerolog.Logger) (string, error) {
	token, acquired, err := w.lock.TryAcquire(ctx, job.UserID)
	if err != nil {
		return "", fmt.Errorf("acquire training lock: %w", err)
	}
	if !acquired {
		log.Info().Msg("run already in progress, skipping job")
		return OutcomeSkipped, nil
	}
	defer func() {
		// The lock must go even when ctx was canceled.
		released, err := w.lock.Release(context.WithoutCancel(ctx), job.UserID, token)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("failed to release training lock")
		case !released:
			log.Warn().Msg("training lock expired before release")
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	runStart := time.Now()
	res, err := w.engine.Recommend(runCtx, job.Request())
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown, not a verdict on the job.
			return "", fmt.Errorf("job interrupted: %w", ctx.Err())
		}
		metrics.RecordRecommendation("", recommend.Outcome(err), time.Since(runStart), 0)
		return w.fail(ctx, job, err, log)
	}
	metrics.RecordRecommendation(string(res.Path), recommend.Outcome(nil), time.Since(runStart), len(res.Foods))

	now := w.now().UTC()
	if err := cache.SetJSON(ctx, w.store, cache.ResultKey(job.UserID), successResult(job, res, now), w.resultTTL); err != nil {
		return "", fmt.Errorf("store result: %w", err)
	}
	status := &RunStatus{
		UserID:       job.UserID,
		JobID:        job.ID,
		RecordCount:  len(job.RecentRecords),
		Path:         res.Path,
		ClusterID:    res.ClusterID,
		CompletedAt:  now,
		ModelVersion: w.modelVersion,
	}
	if err := cache.SetJSON(ctx, w.store, cache.LastRunKey(job.UserID), status, 0); err != nil {
		return "", fmt.Errorf("store run status: %w", err)
	}

	log.Info().
		Str("path", string(res.Path)).
		Int("cluster_id", res.ClusterID).
		Int("foods", len(res.Foods)).
		Msg("job completed")
	return OutcomeSuccess, nil
}

// fail records a failed result. Retrying would not change the outcome.
func (w *Worker) fail(ctx context.Context, job *Job, cause error, log *zerolog.Logger) (string, error) {
	switch {
	case recommend.IsCallerError(cause):
		log.Warn().Err(cause).Msg("job rejected")
	case errors.Is(cause, recommend.ErrUnknownCluster):
		log.Error().Err(cause).Msg("data integrity error")
	case errors.Is(cause, context.DeadlineExceeded):
		log.Error().Dur("timeout", w.timeout).Msg("job timed out")
	default:
		log.Error().Err(cause).Msg("job failed")
	}

	if err := cache.SetJSON(ctx, w.store, cache.ResultKey(job.UserID), failedResult(job, cause, w.now().UTC()), w.resultTTL); err != nil {
		return "", fmt.Errorf("store failed result: %w", err)
	}
	return OutcomeFailed, nil
}
