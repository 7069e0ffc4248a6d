// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package services adapts long-running components to suture.Service so the
// supervisor tree can start, restart and stop them:
//
//   - HTTPServerService: the API server
//   - JobRouterService: the recommendation job consumer, rebuilt on restart
//   - EmbeddedNATSService: an in-process JetStream server
//   - MaintenanceService: periodic result store housekeeping
//
// Every Serve method blocks until its context is canceled and returns
// ctx.Err() on a clean stop. Any other return value is a failure that the
// owning supervisor counts towards its backoff threshold.
package services
