// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/metrics"
)

// ChiMiddleware builds the chi middleware used by the router.
type ChiMiddleware struct {
	config *Config
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates middleware factories from cfg.
func NewChiMiddleware(cfg *Config) *ChiMiddleware {
	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID", "X-Correlation-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Correlation-ID"},
			AllowCredentials: false,
			MaxAge:           86400,
		}),
	}
}

// CORS handles preflight requests. It must be global so OPTIONS requests
// reach it before route matching.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits requests per client IP. group labels rejections in
// metrics.
func (m *ChiMiddleware) RateLimit(group string) func(http.Handler) http.Handler {
	return m.limit(group, m.config.RateLimitRequests)
}

// RateLimitHealth is a permissive limit for monitoring probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit("health", m.config.HealthRateLimit)
}

func (m *ChiMiddleware) limit(group string, requests int) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(group)
			respondError(w, r, http.StatusTooManyRequests, CodeRateLimited, "Too many requests", nil)
		}),
	)
}

// APISecurityHeaders sets headers appropriate for a JSON API.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			next.ServeHTTP(w, r)
		})
	}
}

// withLogger stores logger in the request context so logging.Ctx uses it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func withLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.ContextWithLogger(r.Context(), logger)))
		})
	}
}
