// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/nutrirank/internal/middleware"
)

// Handler returns the chi router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(withLogger(s.logger))
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.mw.CORS())
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, CodeInvalidRequest, "Method not allowed", nil)
	})

	// Health and metrics
	r.Group(func(r chi.Router) {
		r.Use(s.mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/health", s.Health)
		r.Get("/health/live", s.HealthLive)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	// Synchronous endpoint kept at its historical path
	r.With(s.mw.RateLimit("recommend"), APISecurityHeaders()).
		Post("/get-recommendation", s.GetRecommendation)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.mw.RateLimit("api"))
		r.Use(APISecurityHeaders())

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/jobs", s.SubmitJob)
			r.Post("/batch", s.SubmitBatch)
			r.Get("/{user_id}", s.GetResult)
		})
		r.Get("/users/{user_id}/status", s.GetUserStatus)
	})

	return r
}
