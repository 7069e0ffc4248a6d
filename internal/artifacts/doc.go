// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package artifacts loads the precomputed inputs of the recommendation
// engine: the cluster model (JSON), the per-cluster popularity catalog
// (JSON keyed by "cluster_{id}") and the food composition table (CSV read
// through DuckDB). The three files are read concurrently at startup and a
// failure of any of them aborts the process.
package artifacts
