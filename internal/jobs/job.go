// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/nutrirank/internal/recommend"
)

// Metadata keys set on every job message.
const (
	MetadataUserID = "user_id"
	MetadataSource = "source"
)

// ErrMalformedJob is returned when a message payload is not a job.
var ErrMalformedJob = errors.New("malformed job message")

// Job is one asynchronous recommendation request.
type Job struct {
	ID               string                        `json:"job_id"`
	UserID           int64                         `json:"user_id"`
	Features         recommend.Features            `json:"features"`
	NutritionSummary *recommend.MacroSplit         `json:"nutrition_summary,omitempty"`
	RecentRecords    []recommend.ConsumptionRecord `json:"recent_records"`
	TopN             int                           `json:"top_n,omitempty"`
	CorrelationID    string                        `json:"correlation_id,omitempty"`
	EnqueuedAt       time.Time                     `json:"enqueued_at"`
}

// Request converts the job into an engine request.
func (j *Job) Request() *recommend.Request {
	return &recommend.Request{
		UserID:           j.UserID,
		Features:         j.Features,
		NutritionSummary: j.NutritionSummary,
		RecentRecords:    j.RecentRecords,
		TopN:             j.TopN,
	}
}

// NewMessage serializes job into a watermill message. The job id doubles as
// the message UUID so JetStream can deduplicate republished jobs.
func NewMessage(job *Job, source string) (*message.Message, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	msg := message.NewMessage(job.ID, payload)
	msg.Metadata.Set(MetadataUserID, strconv.FormatInt(job.UserID, 10))
	msg.Metadata.Set(MetadataSource, source)
	if job.CorrelationID != "" {
		middleware.SetCorrelationID(job.CorrelationID, msg)
	}
	return msg, nil
}

// DecodeMessage parses a job message.
func DecodeMessage(msg *message.Message) (*Job, error) {
	var job Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id must be positive", ErrMalformedJob)
	}
	if job.ID == "" {
		job.ID = msg.UUID
	}
	if job.CorrelationID == "" {
		job.CorrelationID = middleware.MessageCorrelationID(msg)
	}
	return &job, nil
}
