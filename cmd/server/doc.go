// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Command server runs the NutriRank recommendation service.

Startup order:

 1. Configuration: koanf v2 layering defaults, config.yaml and environment
 2. Logging: zerolog, JSON or console
 3. Artifacts: cluster model, cluster catalog and food table; any failure
    aborts startup
 4. Engine: hybrid ranker over the loaded artifacts
 5. Result store: memory or badger, optionally behind a circuit breaker
 6. Job pipeline: watermill over gochannel or NATS JetStream (embedded or
    external)
 7. Supervisor tree: suture v4 running the HTTP server, the job router and
    store maintenance

# Configuration

Common environment variables:

	HTTP_PORT=5000
	LOG_LEVEL=info
	MODEL_PATH=/data/model/cluster_model.json
	CATALOG_PATH=/data/model/cluster_catalog.json
	FOODS_PATH=/data/model/foods.csv
	CACHE_BACKEND=badger
	JOBS_TRANSPORT=nats
	NATS_EMBEDDED=true

# Signals

SIGINT and SIGTERM cancel the root context. Every supervised service gets
server.shutdown_timeout to stop; the job router waits up to
jobs.close_timeout for in-flight jobs. The transport and the result store
are closed after the tree has returned. A job interrupted by shutdown
stays unacknowledged and is redelivered by NATS on the next start.
*/
package main
