// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package cache provides the key/value store used for recommendation job
results, run metadata and per-user training locks.

# Overview

The Store interface has two backends:
  - MemoryStore: thread-safe in-process map with lazy TTL expiration
  - BadgerStore: BadgerDB with native entry TTLs, persistent across restarts

Two decorators compose on top of a backend:
  - BreakerStore: sony/gobreaker circuit breaker; a missing key counts as success
  - InstrumentedStore: Prometheus operation counters and latency

Open builds the configured chain: backend, optional breaker, metrics.

# Keys

	recommendation:{user_id}   job status and result (1h TTL)
	training_lock:{user_id}    per-user job lock (300s TTL)
	last_train:{user_id}       last successful run metadata (no expiry)

# Usage Example

	store, err := cache.Open(&cache.Config{Backend: cache.BackendBadger, Path: "/data/cache"}, logger)
	if err != nil {
	    return err
	}
	defer store.Close()

	lock := cache.NewTrainingLock(store, 0)
	token, ok, err := lock.TryAcquire(ctx, userID)
	if err != nil || !ok {
	    return err
	}
	defer lock.Release(ctx, userID, token)

	err = cache.SetJSON(ctx, store, cache.ResultKey(userID), result, time.Hour)

# Maintenance

Stores implementing Maintainer are swept periodically by the supervisor:
MemoryStore drops expired entries and BadgerStore runs value log GC.
*/
package cache
