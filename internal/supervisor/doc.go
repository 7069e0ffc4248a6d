// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package supervisor runs the long-lived parts of NutriRank under a suture v4
supervisor tree.

	root ("nutrirank")
	├── data-layer
	│   ├── cache-maintenance
	│   └── embedded-nats (when nats.embedded_server is set)
	├── messaging-layer
	│   └── job-router
	└── api-layer
	    └── http-server

Each layer restarts its own services with backoff. Supervisor events are
logged through a slog logger; main passes logging.NewSlogLogger so they end
up in the zerolog output.

Service adapters live in the services subpackage.
*/
package supervisor
