// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// JobRouter is the lifecycle of a job consumer. *jobs.Router satisfies it.
type JobRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A watermill router runs only once,
// so every supervised restart needs a new one.
type RouterFactory func() (JobRouter, error)

// JobRouterService runs the recommendation job router under supervision.
type JobRouterService struct {
	factory RouterFactory
	logger  zerolog.Logger
	name    string
}

// NewJobRouterService wraps factory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJobRouterService(factory RouterFactory, logger zerolog.Logger) *JobRouterService {
	return &JobRouterService{factory: factory, logger: logger, name: "job-router"}
}

// Serve implements suture.Service.
func (s *JobRouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build job router: %w", err)
	}
	defer func() {
		if cerr := router.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("job router close failed")
		}
	}()

	s.logger.Info().Msg("job router starting")
	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("job router failed: %w", err)
	}
	return errors.New("job router stopped unexpectedly")
}

func (s *JobRouterService) String() string {
	return s.name
}
