// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package recommend implements the hybrid food scoring engine.
//
// # Architecture
//
// A recommendation blends three signals into one score per food:
//
//   - Cluster popularity: a precomputed base score for every food popular
//     within the user's demographic cluster
//   - Personal frequency: how often, and how recently, the user ate a food
//   - Nutrition gap: how well a food's macro split closes the distance
//     between the user's recent macro profile and guideline targets
//
// The pipeline runs leaf-first:
//
//	Engine.Recommend
//	  ├── ExtractMacroProfile   (inline features, summary, or history)
//	  ├── ClusterStrategy       (nearest neighbor or k-means centroid)
//	  ├── Aggregate             (count and recency mass per food)
//	  ├── NutritionScorer       (simple or five-zone band scoring)
//	  └── Rank                  (weighted blend, stable sort, top-N)
//
// # Cold Start
//
// Users whose history does not satisfy the warm condition receive the
// cluster's catalog entries unchanged. Neither the aggregator nor the
// nutrition scorer runs on that path.
//
// # Artifacts
//
// The cluster model, the cluster catalog and the food macro table are
// bundled in an Artifacts value that is built once at startup and passed
// to NewEngine. Nothing in this package mutates artifacts after
// construction, so an Engine is safe for concurrent use without locks.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, artifacts, logger)
//	if err != nil {
//	    return err
//	}
//
//	result, err := engine.Recommend(ctx, &recommend.Request{
//	    UserID:        82,
//	    Features:      recommend.Features{"bmi": 22.5, "activity": 2},
//	    RecentRecords: records,
//	})
//
// # Errors
//
// Caller mistakes wrap ErrInvalidRequest, ErrFeatureArity or
// ErrMissingFeature. A cluster id missing from the catalog wraps
// ErrUnknownCluster. Every error returned by Engine.Recommend is a
// *StageError naming the user and the failing stage.
package recommend
