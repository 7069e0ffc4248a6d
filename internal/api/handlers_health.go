// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status         string            `json:"status"`
	Version        string            `json:"version"`
	StoreConnected bool              `json:"store_connected"`
	Store          cache.StoreReport `json:"store"`
	Artifacts      ArtifactCounts    `json:"artifacts"`
	Engine         recommend.Stats   `json:"engine"`
	Uptime         float64           `json:"uptime_seconds"`
}

// ArtifactCounts summarizes the loaded artifacts.
type ArtifactCounts struct {
	Features       int `json:"features"`
	Clusters       int `json:"clusters"`
	CatalogEntries int `json:"catalog_entries"`
	Foods          int `json:"foods"`
}

// Health handles GET /health. It answers 503 when the result store is
// unreachable, since neither job results nor locks work without it.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	connected := s.store.Ping(ctx) == nil

	health := HealthStatus{
		Status:         "healthy",
		Version:        s.version,
		StoreConnected: connected,
		Store:          cache.Report(s.store),
		Artifacts:      countArtifacts(s.engine.Artifacts()),
		Engine:         s.engine.Stats(),
		Uptime:         time.Since(s.startTime).Seconds(),
	}

	status := http.StatusOK
	if !connected {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	respondData(w, status, &health, time.Time{})
}

// HealthLive handles GET /health/live. It answers 200 while the process
// serves requests, regardless of dependencies.
func (s *Server) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	}, time.Time{})
}

func countArtifacts(a *recommend.Artifacts) ArtifactCounts {
	if a == nil {
		return ArtifactCounts{}
	}
	c := ArtifactCounts{Clusters: len(a.Catalog), Foods: len(a.Foods)}
	if a.Model != nil {
		c.Features = a.Model.Arity()
	}
	for _, entries := range a.Catalog {
		c.CatalogEntries += len(entries)
	}
	return c
}
