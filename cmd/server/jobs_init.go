// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package main

import (
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/config"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/supervisor/services"
)

// jobPipeline holds the asynchronous job components. The router itself is
// built on demand by NewRouter so the supervisor can restart it.
type jobPipeline struct {
	Queue      *jobs.Queue
	NATSServer *jobs.EmbeddedServer

	transport *jobs.Transport
	worker    *jobs.Worker
	config    *jobs.Config
	wmLogger  watermill.LoggerAdapter
	closeOnce sync.Once
}

// initJobs starts the embedded NATS server when configured, then connects
// the transport and builds the queue and worker.
func initJobs(cfg *config.Config, engine jobs.Recommender, store cache.Store) (*jobPipeline, error) {
	jobsCfg := cfg.JobsConfig()
	natsCfg := cfg.NATSOptions()
	logger := logging.WithComponent("jobs")
	wmLogger := logging.NewWatermillAdapter(logger)

	p := &jobPipeline{config: jobsCfg, wmLogger: wmLogger}

	if jobsCfg.Transport == jobs.TransportNATS && natsCfg.EmbeddedServer {
		srv, err := jobs.StartEmbeddedServer(natsCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded nats: %w", err)
		}
		p.NATSServer = srv
		natsCfg.URL = srv.ClientURL()
		logger.Info().Str("url", natsCfg.URL).Str("store_dir", natsCfg.StoreDir).Msg("Embedded NATS server started")
	}

	transport, err := jobs.NewTransport(jobsCfg, natsCfg, wmLogger)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("create job transport: %w", err)
	}
	p.transport = transport

	p.Queue = jobs.NewQueue(transport.Publisher, store, jobsCfg, logger)
	p.worker = jobs.NewWorker(engine, store, jobsCfg, logger)

	logger.Info().
		Str("transport", string(jobsCfg.Transport)).
		Str("topic", jobsCfg.Topic).
		Str("poison_topic", jobsCfg.PoisonTopic).
		Msg("Job pipeline initialized")
	return p, nil
}

// NewRouter is the services.RouterFactory for the job router service.
func (p *jobPipeline) NewRouter() (services.JobRouter, error) {
	r, err := jobs.NewRouter(p.config, p.transport.Subscriber, p.transport.Publisher, p.worker, p.wmLogger)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the transport and, if it is still running, the embedded
// server. It is safe to call more than once.
func (p *jobPipeline) Close() {
	p.closeOnce.Do(func() {
		if p.transport != nil {
			if err := p.transport.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing job transport")
			}
		}
		if p.NATSServer != nil && p.NATSServer.IsRunning() {
			p.NATSServer.Shutdown()
		}
	})
}
