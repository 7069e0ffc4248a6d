// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/metrics"
)

// Enqueue sources recorded in metrics and message metadata.
const (
	SourceAPI   = "api"
	SourceBatch = "batch"
)

// Queue publishes recommendation jobs and marks them pending in the store.
type Queue struct {
	publisher message.Publisher
	store     cache.Store
	topic     string
	resultTTL time.Duration
	limiter   *rate.Limiter
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQueue creates a queue publishing to cfg.Topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQueue(publisher message.Publisher, store cache.Store, cfg *Config, logger zerolog.Logger) *Queue {
	limit := rate.Inf
	if cfg.BatchRatePerSecond > 0 {
		limit = rate.Limit(cfg.BatchRatePerSecond)
	}
	burst := cfg.BatchBurst
	if burst < 1 {
		burst = 1
	}
	return &Queue{
		publisher: publisher,
		store:     store,
		topic:     cfg.Topic,
		resultTTL: cfg.ResultTTL,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger.With().Str("component", "job-queue").Logger(),
		now:       time.Now,
	}
}

// Enqueue marks the user's result pending and publishes the job. It returns
// the job id.
func (q *Queue) Enqueue(ctx context.Context, job *Job) (string, error) {
	return q.enqueue(ctx, job, SourceAPI)
}

// EnqueueBatch enqueues jobs paced by the batch token bucket. It stops at the
// first failure and returns the ids enqueued so far.
func (q *Queue) EnqueueBatch(ctx context.Context, batch []*Job) ([]string, error) {
	ids := make([]string, 0, len(batch))
	for _, job := range batch {
		if err := q.limiter.Wait(ctx); err != nil {
			return ids, fmt.Errorf("batch enqueue after %d jobs: %w", len(ids), err)
		}
		id, err := q.enqueue(ctx, job, SourceBatch)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	q.logger.Info().Int("jobs", len(ids)).Msg("batch enqueued")
	return ids, nil
}

func (q *Queue) enqueue(ctx context.Context, job *Job, source string) (string, error) {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now().UTC()
	}
	msg, err := NewMessage(job, source)
	if err != nil {
		return "", err
	}

	key := cache.ResultKey(job.UserID)
	if err := cache.SetJSON(ctx, q.store, key, pendingResult(job, job.EnqueuedAt), q.resultTTL); err != nil {
		return "", fmt.Errorf("mark job %s pending: %w", job.ID, err)
	}

	if err := q.publisher.Publish(q.topic, msg); err != nil {
		// Leave no pending marker behind for a job that never reached the broker.
		if delErr := q.store.Delete(ctx, key); delErr != nil {
			q.logger.Warn().Err(delErr).Int64("user_id", job.UserID).Msg("failed to clear pending marker")
		}
		return "", fmt.Errorf("publish job %s: %w", job.ID, err)
	}

	metrics.RecordJobEnqueued(source, 1)
	q.logger.Debug().
		Str("job_id", job.ID).
		Int64("user_id", job.UserID).
		Str("source", source).
		Str("correlation_id", job.CorrelationID).
		Msg("job enqueued")
	return job.ID, nil
}

// Close closes the publisher.
func (q *Queue) Close() error {
	return q.publisher.Close()
}
