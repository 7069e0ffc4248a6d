// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/nutrirank/internal/metrics"
)

// InstrumentedStore records Prometheus metrics for every call.
type InstrumentedStore struct {
	next    Store
	backend string
}

// Instrument wraps next with metrics. backend labels eviction counts.
func Instrument(next Store, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

func observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "miss"
	case err != nil:
		result = "error"
	case op == "get":
		result = "hit"
	}
	metrics.RecordCacheOperation(op, result, time.Since(start))
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Get(ctx, key)
	observe("get", start, err)
	return data, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value, ttl)
	observe("set", start, err)
	return err
}

func (s *InstrumentedStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := s.next.SetNX(ctx, key, value, ttl)
	observe("setnx", start, err)
	return ok, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	observe("delete", start, err)
	return err
}

func (s *InstrumentedStore) CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error) {
	start := time.Now()
	ok, err := s.next.CompareAndDelete(ctx, key, value)
	observe("compare_and_delete", start, err)
	return ok, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	observe("ping", start, err)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}

// Maintain forwards to the wrapped store and counts evictions.
func (s *InstrumentedStore) Maintain(ctx context.Context) (int, error) {
	m, ok := s.next.(Maintainer)
	if !ok {
		return 0, nil
	}
	n, err := m.Maintain(ctx)
	metrics.RecordCacheEvictions(s.backend, n)
	return n, err
}

var (
	_ Store      = (*InstrumentedStore)(nil)
	_ Maintainer = (*InstrumentedStore)(nil)
)
