// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/nutrirank/internal/metrics"
)

// ErrPublisherUnavailable is returned while the publish breaker is open.
var ErrPublisherUnavailable = errors.New("job publisher unavailable")

// breakerPublisher fails fast while the broker is unreachable instead of
// blocking API requests on NATS reconnect attempts.
type breakerPublisher struct {
	next message.Publisher
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

func newBreakerPublisher(next message.Publisher, name string, logger watermill.LoggerAdapter) *breakerPublisher {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("publisher circuit breaker state changed", watermill.LogFields{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	}
	return &breakerPublisher{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[interface{}](settings),
		name: name,
	}
}

func (p *breakerPublisher) Publish(topic string, messages ...*message.Message) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(topic, messages...)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(p.name, "rejected")
		return ErrPublisherUnavailable
	case err != nil:
		metrics.RecordCircuitBreakerRequest(p.name, "failure")
		return err
	default:
		metrics.RecordCircuitBreakerRequest(p.name, "success")
		return nil
	}
}

func (p *breakerPublisher) Close() error {
	return p.next.Close()
}
