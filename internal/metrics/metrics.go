// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Engine Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"path", "outcome"}, // path: "cold_start", "warm", "none"; outcome: "success", "caller_error", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of one recommendation pipeline run in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"path"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of foods returned per recommendation",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 50, 100, 250, 500},
		},
	)

	// Artifact Metrics
	ArtifactsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artifacts_loaded",
			Help: "Number of loaded artifact entries by kind",
		},
		[]string{"kind"}, // "clusters", "catalog_entries", "foods"
	)

	ArtifactsLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artifacts_load_duration_seconds",
			Help:    "Duration of artifact loading at startup",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// Cache Store Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache store operations",
		},
		[]string{"operation", "result"}, // result: "ok", "hit", "miss", "error"
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache store operations in seconds",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"operation"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of expired entries removed by maintenance",
		},
		[]string{"backend"},
	)

	TrainingLockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "training_lock_contention_total",
			Help: "Total number of jobs skipped because the user lock was held",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Job Metrics
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_jobs_enqueued_total",
			Help: "Total number of recommendation jobs enqueued",
		},
		[]string{"source"}, // "single", "batch"
	)

	JobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_jobs_total",
			Help: "Total number of processed recommendation jobs by outcome",
		},
		[]string{"status"}, // "success", "failed", "skipped", "retry"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_job_duration_seconds",
			Help:    "Duration of recommendation job processing in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRecommendation records one engine run. Path is empty when the run
// failed before a policy was chosen.
func RecordRecommendation(path, outcome string, duration time.Duration, returned int) {
	if path == "" {
		path = "none"
	}
	RecommendationRequests.WithLabelValues(path, outcome).Inc()
	if outcome == "success" {
		RecommendationDuration.WithLabelValues(path).Observe(duration.Seconds())
		RecommendationCandidates.Observe(float64(returned))
	}
}

// SetArtifactCounts publishes the size of the loaded artifacts.
func SetArtifactCounts(clusters, catalogEntries, foods int) {
	ArtifactsLoaded.WithLabelValues("clusters").Set(float64(clusters))
	ArtifactsLoaded.WithLabelValues("catalog_entries").Set(float64(catalogEntries))
	ArtifactsLoaded.WithLabelValues("foods").Set(float64(foods))
}

// RecordCacheOperation records a cache store call.
func RecordCacheOperation(operation, result string, duration time.Duration) {
	CacheOperations.WithLabelValues(operation, result).Inc()
	CacheOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheEvictions adds n maintenance evictions for a backend.
func RecordCacheEvictions(backend string, n int) {
	if n > 0 {
		CacheEvictions.WithLabelValues(backend).Add(float64(n))
	}
}

// RecordLockContention counts a job skipped on a held training lock.
func RecordLockContention() {
	TrainingLockContention.Inc()
}

// RecordCircuitBreakerTransition updates breaker state gauges and counters.
// States use the gobreaker names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

// RecordCircuitBreakerRequest records the result of a breaker-guarded call.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordJobEnqueued counts n enqueued jobs.
func RecordJobEnqueued(source string, n int) {
	JobsEnqueued.WithLabelValues(source).Add(float64(n))
}

// RecordJobOutcome records a processed job.
func RecordJobOutcome(status string, duration time.Duration) {
	JobOutcomes.WithLabelValues(status).Inc()
	JobDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
