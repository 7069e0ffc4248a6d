// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"time"

	"github.com/tomtom215/nutrirank/internal/recommend"
)

// Status is the state of the latest job for a user.
type Status string

// Job statuses stored at recommendation:{user_id}.
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the document stored at recommendation:{user_id}. Success and
// failure share the key; a failure carries Error instead of Foods.
type Result struct {
	Status    Status                     `json:"status"`
	JobID     string                     `json:"job_id"`
	UserID    int64                      `json:"user_id"`
	ClusterID *int                       `json:"cluster_id,omitempty"`
	Path      recommend.Path             `json:"path,omitempty"`
	Foods     []recommend.Recommendation `json:"foods,omitempty"`
	Error     string                     `json:"error,omitempty"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// RunStatus is the metadata stored at last_train:{user_id} after a
// successful run. It never expires.
type RunStatus struct {
	UserID       int64          `json:"user_id"`
	JobID        string         `json:"job_id"`
	RecordCount  int            `json:"record_count"`
	Path         recommend.Path `json:"path"`
	ClusterID    int            `json:"cluster_id"`
	CompletedAt  time.Time      `json:"completed_at"`
	ModelVersion string         `json:"model_version"`
}

func pendingResult(job *Job, now time.Time) *Result {
	return &Result{Status: StatusPending, JobID: job.ID, UserID: job.UserID, UpdatedAt: now}
}

func successResult(job *Job, res *recommend.Result, now time.Time) *Result {
	cluster := res.ClusterID
	foods := res.Foods
	if foods == nil {
		foods = []recommend.Recommendation{}
	}
	return &Result{
		Status:    StatusSuccess,
		JobID:     job.ID,
		UserID:    job.UserID,
		ClusterID: &cluster,
		Path:      res.Path,
		Foods:     foods,
		UpdatedAt: now,
	}
}

func failedResult(job *Job, err error, now time.Time) *Result {
	return &Result{Status: StatusFailed, JobID: job.ID, UserID: job.UserID, Error: err.Error(), UpdatedAt: now}
}
