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

	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamContext is the subset of jetstream.JetStream used to manage the
// job stream.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamConfig describes the job stream.
type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

// StreamInitializer creates or updates the job stream.
type StreamInitializer struct {
	js  JetStreamContext
	cfg StreamConfig
}

// NewStreamInitializer returns an initializer for cfg.
func NewStreamInitializer(js JetStreamContext, cfg *StreamConfig) *StreamInitializer {
	return &StreamInitializer{js: js, cfg: *cfg}
}

// streamConfig uses work-queue retention: a job is removed once a worker
// acknowledges it.
func (s *StreamInitializer) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       s.cfg.Name,
		Subjects:   s.cfg.Subjects,
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     s.cfg.MaxAge,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
		Duplicates: 2 * time.Minute,
	}
}

// EnsureStream creates the stream, or updates it when it already exists.
func (s *StreamInitializer) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	if s.cfg.Name == "" || len(s.cfg.Subjects) == 0 {
		return nil, errors.New("stream name and subjects are required")
	}

	_, err := s.js.Stream(ctx, s.cfg.Name)
	switch {
	case err == nil:
		stream, err := s.js.UpdateStream(ctx, s.streamConfig())
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", s.cfg.Name, err)
		}
		return stream, nil
	case errors.Is(err, jetstream.ErrStreamNotFound):
		stream, err := s.js.CreateStream(ctx, s.streamConfig())
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", s.cfg.Name, err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("check stream %s: %w", s.cfg.Name, err)
	}
}
