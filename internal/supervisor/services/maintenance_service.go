// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/cache"
)

// MaintenanceService runs cache.Maintainer.Maintain on a fixed interval:
// expired entries for the memory store, value log GC for badger.
// Maintenance errors are logged and the next tick tries again.
type MaintenanceService struct {
	store    cache.Maintainer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewMaintenanceService returns a service for store. A non-positive
// interval defaults to 5m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(store cache.Maintainer, interval time.Duration, logger zerolog.Logger) *MaintenanceService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MaintenanceService{
		store:    store,
		interval: interval,
		logger:   logger,
		name:     "cache-maintenance",
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *MaintenanceService) runOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.store.Maintain(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache maintenance failed")
		return
	}
	if n > 0 {
		s.logger.Debug().Int("removed", n).Dur("duration", time.Since(start)).Msg("cache maintenance")
	}
}

func (s *MaintenanceService) String() string {
	return s.name
}
