// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/nutrirank/internal/metrics"
)

// ErrUnavailable is returned while the breaker rejects calls.
var ErrUnavailable = errors.New("cache: store unavailable")

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Enabled bool

	// MaxRequests is the number of probe calls allowed while half-open.
	MaxRequests uint32

	// Interval resets failure counts while closed. Zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the consecutive failure count that opens it.
	FailureThreshold uint32
}

// BreakerStore guards a Store with a circuit breaker so that a failing
// backend is not hammered by every request and job. A missing key is a
// successful call.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerStore wraps next.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerStore(next Store, cfg BreakerConfig, logger zerolog.Logger) *BreakerStore {
	const name = "cache-store"

	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &BreakerStore{next: next, cb: cb, name: name}
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case err == nil || errors.Is(err, ErrNotFound):
		metrics.RecordCircuitBreakerRequest(b.name, "success")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(b.name, "rejected")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		metrics.RecordCircuitBreakerRequest(b.name, "failure")
	}
	return result, err
}

// Get implements Store.
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	data, _ := result.([]byte)
	return data, nil
}

// Set implements Store.
func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

// SetNX implements Store.
func (b *BreakerStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.SetNX(ctx, key, value, ttl)
	})
	if err != nil {
		return false, err
	}
	ok, _ := result.(bool)
	return ok, nil
}

// Delete implements Store.
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// CompareAndDelete implements Store.
func (b *BreakerStore) CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.CompareAndDelete(ctx, key, value)
	})
	if err != nil {
		return false, err
	}
	ok, _ := result.(bool)
	return ok, nil
}

// Ping implements Store.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Ping(ctx)
	})
	return err
}

// Close closes the wrapped store without going through the breaker.
func (b *BreakerStore) Close() error {
	return b.next.Close()
}

// Maintain forwards to the wrapped store when it supports maintenance.
func (b *BreakerStore) Maintain(ctx context.Context) (int, error) {
	if m, ok := b.next.(Maintainer); ok {
		return m.Maintain(ctx)
	}
	return 0, nil
}

// State returns the breaker state name.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

var (
	_ Store      = (*BreakerStore)(nil)
	_ Maintainer = (*BreakerStore)(nil)
)
