// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: assigns X-Request-ID and a correlation ID, and places a
    request-scoped logger in the context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by the chi route pattern rather than the raw path

Ordering:

RequestID must run before AccessLog and before any handler that logs, so
that log lines carry request_id and correlation_id:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Route patterns are only known once chi has matched the request, so the
metrics middleware reads the pattern after the handler returns. Requests
that match no route are recorded under "unmatched" to keep label
cardinality bounded.
*/
package middleware
