// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// workerHandlerName names the consumer handler in router logs.
const workerHandlerName = "recommendation-worker"

// Router wraps a watermill router that feeds job messages to a Worker.
//
// Middleware, outermost first:
//  1. PoisonQueue: a message that still fails after all retries is
//     published to the poison topic and acknowledged
//  2. CorrelationID: propagates the enqueueing request's correlation id
//  3. Retry: exponential backoff for store failures
//  4. Recoverer: turns handler panics into errors so they are retried too
type Router struct {
	router  *message.Router
	logger  watermill.LoggerAdapter
	running atomic.Bool
}

// NewRouter builds the router and registers worker as the consumer of
// cfg.Topic. poisonPub may be nil to disable the poison queue.
func NewRouter(
	cfg *Config,
	sub message.Subscriber,
	poisonPub message.Publisher,
	worker *Worker,
	logger watermill.LoggerAdapter,
) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	if poisonPub != nil && cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(poisonPub, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poison)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(
		middleware.CorrelationID,
		retry.Middleware,
		middleware.Recoverer,
	)

	wmRouter.AddConsumerHandler(workerHandlerName, cfg.Topic, sub, worker.Handle)

	return &Router{router: wmRouter, logger: logger}, nil
}

// Run processes messages until ctx is canceled or Close is called. A
// Router runs once; it cannot be restarted after Run returns.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel closed once the router consumes messages.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for in-flight jobs.
func (r *Router) Close() error {
	return r.router.Close()
}
