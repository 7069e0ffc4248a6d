// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

var errStoreDown = errors.New("store down")

// fakeRecommender returns a fixed result unless fn is set.
type fakeRecommender struct {
	fn    func(ctx context.Context, req *recommend.Request) (*recommend.Result, error)
	calls atomic.Int32
}

func (f *fakeRecommender) Recommend(ctx context.Context, req *recommend.Request) (*recommend.Result, error) {
	f.calls.Add(1)
	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return &recommend.Result{
		UserID:        req.UserID,
		ClusterID:     2,
		Path:          recommend.PathColdStart,
		HistoryLength: len(req.RecentRecords),
		Foods: []recommend.Recommendation{
			{UserID: req.UserID, FoodID: 11, Score: 4.5},
			{UserID: req.UserID, FoodID: 12, Score: 3.0},
		},
	}, nil
}

// failingStore makes selected operations fail.
type failingStore struct {
	*cache.MemoryStore
	failSetNX atomic.Bool
	failSet   atomic.Bool
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: cache.NewMemoryStore()}
}

func (s *failingStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if s.failSetNX.Load() {
		return false, errStoreDown
	}
	return s.MemoryStore.SetNX(ctx, key, value, ttl)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failSet.Load() {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func testJobConfig() *Config {
	cfg := DefaultConfig()
	cfg.RetryMaxRetries = 1
	cfg.RetryInitialInterval = 5 * time.Millisecond
	cfg.RetryMaxInterval = 10 * time.Millisecond
	cfg.CloseTimeout = time.Second
	cfg.BatchRatePerSecond = 0
	return &cfg
}

func readResult(t *testing.T, store cache.Store, userID int64) *Result {
	t.Helper()
	var res Result
	if err := cache.GetJSON(context.Background(), store, cache.ResultKey(userID), &res); err != nil {
		t.Fatalf("read result for user %d: %v", userID, err)
	}
	return &res
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
