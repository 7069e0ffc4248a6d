// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package api exposes the recommendation service over HTTP using chi.

Endpoints:

	POST /get-recommendation                 synchronous ranking, returns {"foods": [...]}
	POST /api/v1/recommendations/jobs        enqueue one job, 202 with job_id
	POST /api/v1/recommendations/batch       enqueue many jobs, paced
	GET  /api/v1/recommendations/{user_id}   latest result (202 while pending)
	GET  /api/v1/users/{user_id}/status      last run metadata and running flag
	GET  /health                             store ping, store report, artifact counts
	GET  /health/live                        liveness
	GET  /metrics                            Prometheus exposition

Responses under /api/v1 and /health use the envelope

	{"status": "success", "data": ..., "metadata": {"timestamp": ...}}

and every error, on any route, uses

	{"status": "error", "error": {"code": "...", "message": "...", "details": {...}}}

Error codes are VALIDATION_ERROR, INVALID_REQUEST, NOT_FOUND,
DATA_INTEGRITY_ERROR, SERVICE_UNAVAILABLE, RATE_LIMITED and INTERNAL_ERROR.

Middleware order is request ID, panic recovery, CORS, access log, metrics,
then per-group rate limiting and security headers.
*/
package api
