// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// NATSServer is the part of *jobs.EmbeddedServer the service watches.
type NATSServer interface {
	ClientURL() string
	IsRunning() bool
	Shutdown()
}

// EmbeddedNATSService owns an embedded NATS server that was started before
// the tree so the job transport could connect to it. Serve keeps the server
// alive until shutdown and reports a failure if it dies on its own. A
// server that died is not restarted here; the router layer backs off until
// the process is restarted.
type EmbeddedNATSService struct {
	server        NATSServer
	checkInterval time.Duration
	logger        zerolog.Logger
	name          string
}

// NewEmbeddedNATSService wraps an already running server. A non-positive
// checkInterval defaults to 5s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmbeddedNATSService(server NATSServer, checkInterval time.Duration, logger zerolog.Logger) *EmbeddedNATSService {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	return &EmbeddedNATSService{
		server:        server,
		checkInterval: checkInterval,
		logger:        logger,
		name:          "embedded-nats",
	}
}

// Serve implements suture.Service.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	s.logger.Info().Str("url", s.server.ClientURL()).Msg("embedded nats server supervised")

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.server.Shutdown()
			s.logger.Info().Msg("embedded nats server stopped")
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				return errors.New("embedded nats server is not running")
			}
		}
	}
}

func (s *EmbeddedNATSService) String() string {
	return s.name
}
