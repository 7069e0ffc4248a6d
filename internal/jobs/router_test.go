// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// startRouter runs a router over an in-process transport until the test ends.
func startRouter(t *testing.T, cfg *Config, store cache.Store, engine Recommender) (*Queue, *Transport) {
	t.Helper()
	transport := NewChannelTransport(16, watermill.NopLogger{})

	worker := NewWorker(engine, store, cfg, zerolog.Nop())
	router, err := NewRouter(cfg, transport.Subscriber, transport.Publisher, worker, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	if !router.IsRunning() {
		t.Error("IsRunning() = false after start")
	}

	t.Cleanup(func() {
		cancel()
		<-done
		_ = transport.Close()
	})
	return NewQueue(transport.Publisher, store, cfg, zerolog.Nop()), transport
}

func TestRouter_ProcessesJobs(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	queue, _ := startRouter(t, testJobConfig(), store, &fakeRecommender{})

	id, err := queue.Enqueue(context.Background(), &Job{UserID: 82})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, 5*time.Second, func() bool {
		var res Result
		err := cache.GetJSON(context.Background(), store, cache.ResultKey(82), &res)
		return err == nil && res.Status == StatusSuccess
	})

	if res := readResult(t, store, 82); res.JobID != id || len(res.Foods) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore()
	engine := &fakeRecommender{}
	engine.fn = func(_ context.Context, req *recommend.Request) (*recommend.Result, error) {
		if engine.calls.Load() == 1 {
			panic("first run blows up")
		}
		return &recommend.Result{UserID: req.UserID, Path: recommend.PathWarm, Foods: []recommend.Recommendation{{FoodID: 1}}}, nil
	}
	queue, _ := startRouter(t, testJobConfig(), store, engine)

	if _, err := queue.Enqueue(context.Background(), &Job{UserID: 6}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 5*time.Second, func() bool {
		var res Result
		return cache.GetJSON(context.Background(), store, cache.ResultKey(6), &res) == nil && res.Status == StatusSuccess
	})
	if engine.calls.Load() != 2 {
		t.Errorf("engine calls = %d, want 2 (panic then retry)", engine.calls.Load())
	}
}

func TestRouter_PoisonsAfterRetries(t *testing.T) {
	t.Parallel()
	cfg := testJobConfig()
	store := newFailingStore()
	queue, transport := startRouter(t, cfg, store, &fakeRecommender{})

	poisoned, err := transport.Subscriber.Subscribe(context.Background(), cfg.PoisonTopic)
	if err != nil {
		t.Fatal(err)
	}

	// Enqueue only writes with Set, so the pending marker still lands.
	store.failSetNX.Store(true)
	id, err := queue.Enqueue(context.Background(), &Job{UserID: 8})
	if err != nil {
		t.Fatal(err)
	}

	msg := receive(t, poisoned)
	if msg.UUID != id {
		t.Errorf("poisoned message = %s, want %s", msg.UUID, id)
	}

	var res Result
	if err := cache.GetJSON(context.Background(), store, cache.ResultKey(8), &res); err != nil || res.Status != StatusPending {
		t.Errorf("result = %+v, %v, want the pending marker untouched", res, err)
	}
}

func TestRouter_RestartOnSameTransport(t *testing.T) {
	t.Parallel()
	cfg := testJobConfig()
	store := cache.NewMemoryStore()
	transport := NewChannelTransport(16, watermill.NopLogger{})
	t.Cleanup(func() { _ = transport.Close() })
	worker := NewWorker(&fakeRecommender{}, store, cfg, zerolog.Nop())
	queue := NewQueue(transport.Publisher, store, cfg, zerolog.Nop())

	for run, userID := range []int64{1, 2} {
		router, err := NewRouter(cfg, transport.Subscriber, transport.Publisher, worker, watermill.NopLogger{})
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- router.Run(ctx) }()
		<-router.Running()

		if _, err := queue.Enqueue(context.Background(), &Job{UserID: userID}); err != nil {
			t.Fatalf("run %d: Enqueue() error = %v", run, err)
		}
		waitFor(t, 5*time.Second, func() bool {
			var res Result
			err := cache.GetJSON(context.Background(), store, cache.ResultKey(userID), &res)
			return err == nil && res.Status == StatusSuccess
		})

		cancel()
		<-done
	}
}
