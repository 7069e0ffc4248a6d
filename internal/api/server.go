// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// Engine is the synchronous recommendation engine.
type Engine interface {
	Recommend(ctx context.Context, req *recommend.Request) (*recommend.Result, error)
	Artifacts() *recommend.Artifacts
	Stats() recommend.Stats
}

// JobQueue accepts asynchronous recommendation jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, job *jobs.Job) (string, error)
	EnqueueBatch(ctx context.Context, batch []*jobs.Job) ([]string, error)
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	config *Config
	engine Engine
	queue  JobQueue
	store  cache.Store
	lock   *cache.TrainingLock
	logger zerolog.Logger
	mw     *ChiMiddleware

	// reads collapses concurrent polls for the same user into one store
	// read.
	reads singleflight.Group

	startTime time.Time
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates the HTTP server handlers. queue may be nil, in which
// case the job endpoints answer 503.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(cfg *Config, engine Engine, queue JobQueue, store cache.Store, logger zerolog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api config: %w", err)
	}
	if engine == nil || store == nil {
		return nil, errors.New("api: engine and store are required")
	}

	s := &Server{
		config:    cfg,
		engine:    engine,
		queue:     queue,
		store:     store,
		lock:      cache.NewTrainingLock(store, 0),
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		version:   "dev",
	}
	s.mw = NewChiMiddleware(cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// withTimeout bounds a handler's downstream calls.
func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}
