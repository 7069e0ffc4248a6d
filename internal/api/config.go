// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"errors"
	"time"
)

// Config holds HTTP layer settings.
type Config struct {
	// CORS origins. Empty disables cross-origin access.
	CORSAllowedOrigins []string

	// Rate limiting per client IP. Health endpoints get HealthRateLimit
	// requests per RateLimitWindow instead.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	HealthRateLimit   int

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64

	// MaxBatchSize bounds the number of jobs in one batch request.
	MaxBatchSize int

	// RequestTimeout bounds synchronous recommendation and store calls.
	RequestTimeout time.Duration
}

// DefaultConfig returns conservative defaults. CORS origins default to
// empty, requiring explicit configuration.
func DefaultConfig() *Config {
	return &Config{
		CORSAllowedOrigins: []string{},
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		HealthRateLimit:    1000,
		MaxBodyBytes:       1 << 20,
		MaxBatchSize:       1000,
		RequestTimeout:     30 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if !c.RateLimitDisabled {
		if c.RateLimitRequests <= 0 {
			errs = append(errs, errors.New("rate_limit_requests must be positive"))
		}
		if c.RateLimitWindow <= 0 {
			errs = append(errs, errors.New("rate_limit_window must be positive"))
		}
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if c.MaxBatchSize <= 0 {
		errs = append(errs, errors.New("max_batch_size must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	return errors.Join(errs...)
}
