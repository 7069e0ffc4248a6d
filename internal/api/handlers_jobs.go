// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/logging"
)

// errCorruptDocument marks a stored document that no longer decodes.
var errCorruptDocument = errors.New("corrupt stored document")

// SubmitJob handles POST /api/v1/recommendations/jobs.
func (s *Server) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Job queue is not configured", nil)
		return
	}

	var req RecommendationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := s.withTimeout(logging.ContextWithUserID(r.Context(), req.UserID))
	defer cancel()

	job := req.Job()
	job.CorrelationID = logging.CorrelationIDFromContext(ctx)

	jobID, err := s.queue.Enqueue(ctx, job)
	if err != nil {
		respondClassified(w, r.WithContext(ctx), fmt.Errorf("enqueue: %w", err))
		return
	}

	w.Header().Set("Location", "/api/v1/recommendations/"+strconv.FormatInt(req.UserID, 10))
	respondData(w, http.StatusAccepted, &JobAccepted{
		JobID:  jobID,
		UserID: req.UserID,
		Status: jobs.StatusPending,
	}, time.Time{})
}

// SubmitBatch handles POST /api/v1/recommendations/batch. Jobs are paced
// by the queue; on partial failure the ids enqueued so far are returned in
// the error details.
func (s *Server) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Job queue is not configured", nil)
		return
	}

	var req BatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.Jobs) > s.config.MaxBatchSize {
		respondAPIError(w, r, http.StatusBadRequest, &APIError{
			Code:    CodeValidation,
			Message: fmt.Sprintf("jobs must contain at most %d items", s.config.MaxBatchSize),
			Details: map[string]interface{}{"field": "jobs", "tag": "max", "value": len(req.Jobs)},
		}, nil)
		return
	}

	correlationID := logging.CorrelationIDFromContext(r.Context())
	batch := make([]*jobs.Job, len(req.Jobs))
	for i := range req.Jobs {
		batch[i] = req.Jobs[i].Job()
		batch[i].CorrelationID = correlationID
	}

	// Pacing can legitimately outlast RequestTimeout, so the batch runs
	// under the request context only.
	start := time.Now()
	ids, err := s.queue.EnqueueBatch(r.Context(), batch)
	if err != nil {
		status, apiErr := classify(err)
		apiErr.Details = map[string]interface{}{"accepted": len(ids), "job_ids": ids}
		respondAPIError(w, r, status, apiErr, fmt.Errorf("enqueue batch: %w", err))
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("jobs", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("batch enqueued")

	respondData(w, http.StatusAccepted, &BatchAccepted{JobIDs: ids, Accepted: len(ids)}, start)
}

// GetResult handles GET /api/v1/recommendations/{user_id}. A pending job
// answers 202 with the pending document, an unknown user 404.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	var res jobs.Result
	shared, err := s.readShared(r, cache.ResultKey(userID), &res)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "No recommendation for this user", nil)
		return
	case err != nil:
		respondReadError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Status == jobs.StatusPending {
		status = http.StatusAccepted
	}
	if shared {
		w.Header().Set("X-Shared-Read", "true")
	}
	respondData(w, status, &res, start)
}

// UserStatus is the body of GET /api/v1/users/{user_id}/status: the last
// completed run plus whether a run holds the training lock right now.
type UserStatus struct {
	jobs.RunStatus
	Running bool `json:"running"`
}

// GetUserStatus handles GET /api/v1/users/{user_id}/status. It answers 404
// only when the user has neither a completed nor a running job.
func (s *Server) GetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	status := UserStatus{RunStatus: jobs.RunStatus{UserID: userID}}
	_, err := s.readShared(r, cache.LastRunKey(userID), &status.RunStatus)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		respondReadError(w, r, err)
		return
	}
	hasRun := err == nil

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()
	status.Running, err = s.lock.Held(ctx, userID)
	if err != nil {
		storeUnavailable(w, r, err)
		return
	}

	if !hasRun && !status.Running {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "No completed run for this user", nil)
		return
	}
	respondData(w, http.StatusOK, &status, start)
}

// readShared reads key into dst, collapsing concurrent reads of the same
// key. The raw bytes are shared; every caller decodes its own copy. The
// shared read ignores the first caller's cancellation but keeps the server
// timeout.
func (s *Server) readShared(r *http.Request, key string, dst interface{}) (bool, error) {
	v, err, shared := s.reads.Do(key, func() (interface{}, error) {
		ctx, cancel := s.withTimeout(context.WithoutCancel(r.Context()))
		defer cancel()
		return s.store.Get(ctx, key)
	})
	if err != nil {
		return shared, err
	}
	if err := json.Unmarshal(v.([]byte), dst); err != nil {
		return shared, fmt.Errorf("%w: %s: %w", errCorruptDocument, key, err)
	}
	return shared, nil
}

func respondReadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errCorruptDocument) {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Stored document is unreadable", err)
		return
	}
	storeUnavailable(w, r, err)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondAPIError(w, r, http.StatusBadRequest, &APIError{
			Code:    CodeValidation,
			Message: "user_id must be a positive integer",
			Details: map[string]interface{}{"field": "user_id", "value": sanitizeLogValue(raw)},
		}, nil)
		return 0, false
	}
	return id, true
}
