// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
are exposed on the /metrics endpoint by the API router.

# Available Metrics

Recommendation Metrics:
  - recommendation_requests_total: Engine runs (counter)
    Labels: path (cold_start, warm, none), outcome (success, caller_error, error)
  - recommendation_duration_seconds: Pipeline duration (histogram)
    Labels: path
  - recommendation_candidates: Foods returned per run (histogram)
  - artifacts_loaded: Loaded artifact sizes (gauge)
    Labels: kind (clusters, catalog_entries, foods)

Cache Store Metrics:
  - cache_operations_total: Store calls (counter)
    Labels: operation (get, set, setnx, delete, ping), result (ok, hit, miss, error)
  - cache_operation_duration_seconds: Store call latency (histogram)
  - cache_evictions_total: Entries removed by maintenance (counter)
  - training_lock_contention_total: Jobs skipped on a held lock (counter)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Guarded calls (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_state_transitions_total (counter)

Job Metrics:
  - recommendation_jobs_enqueued_total (counter)
    Labels: source (single, batch)
  - recommendation_jobs_total: Processed jobs (counter)
    Labels: status (success, failed, skipped, retry)
  - recommendation_job_duration_seconds (histogram)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total

# Usage Example

	start := time.Now()
	res, err := engine.Recommend(ctx, req)
	if err != nil {
	    metrics.RecordRecommendation("", recommend.Outcome(err), time.Since(start), 0)
	    return err
	}
	metrics.RecordRecommendation(string(res.Path), "success", time.Since(start), len(res.Foods))

# Thread Safety

All metric operations are safe for concurrent use.
*/
package metrics
