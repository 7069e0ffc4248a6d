// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// flakyStore fails every call while failing is set.
type flakyStore struct {
	*MemoryStore
	failing atomic.Bool
	calls   atomic.Int32
}

var errBackend = errors.New("backend down")

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: NewMemoryStore()}
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.failing.Load() {
		return nil, errBackend
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Ping(ctx context.Context) error {
	f.calls.Add(1)
	if f.failing.Load() {
		return errBackend
	}
	return f.MemoryStore.Ping(ctx)
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := newFlakyStore()
	backend.failing.Store(true)
	s := NewBreakerStore(backend, BreakerConfig{Enabled: true, FailureThreshold: 3, Timeout: time.Hour}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := s.Ping(ctx); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if s.State() != "open" {
		t.Fatalf("State() = %s, want open", s.State())
	}

	before := backend.calls.Load()
	if err := s.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("open breaker err = %v, want ErrUnavailable", err)
	}
	if backend.calls.Load() != before {
		t.Error("open breaker must not call the backend")
	}
}

func TestBreakerStore_NotFoundIsSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewBreakerStore(NewMemoryStore(), BreakerConfig{Enabled: true, FailureThreshold: 2, Timeout: time.Hour}, zerolog.Nop())
	for i := 0; i < 10; i++ {
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() = %v, want ErrNotFound", err)
		}
	}
	if s.State() != "closed" {
		t.Errorf("State() = %s, want closed", s.State())
	}
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewBreakerStore(NewMemoryStore(), BreakerConfig{Enabled: true}, zerolog.Nop())

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, err)
	}
	ok, err := s.SetNX(ctx, "k", []byte("w"), time.Minute)
	if err != nil || ok {
		t.Errorf("SetNX(existing) = %v, %v, want false", ok, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Error(err)
	}
	if n, err := s.Maintain(ctx); err != nil || n != 0 {
		t.Errorf("Maintain() = %d, %v", n, err)
	}
}

func TestBreakerStore_RecoversAfterTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := newFlakyStore()
	backend.failing.Store(true)
	s := NewBreakerStore(backend, BreakerConfig{Enabled: true, FailureThreshold: 1, Timeout: 50 * time.Millisecond}, zerolog.Nop())

	_ = s.Ping(ctx)
	if s.State() != "open" {
		t.Fatalf("State() = %s, want open", s.State())
	}

	backend.failing.Store(false)
	time.Sleep(100 * time.Millisecond)

	if err := s.Ping(ctx); err != nil {
		t.Errorf("probe Ping() = %v, want nil", err)
	}
	if s.State() != "closed" {
		t.Errorf("State() = %s, want closed", s.State())
	}
}
