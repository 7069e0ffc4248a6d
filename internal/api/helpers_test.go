// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

func testArtifacts() *recommend.Artifacts {
	return &recommend.Artifacts{
		Model: &recommend.ClusterModel{
			FeatureCols: []string{recommend.FeatureBMI, recommend.FeatureActivity},
			Scaler:      recommend.Scaler{Mean: []float64{22, 2}, Scale: []float64{3, 1}},
			Training:    [][]float64{{18, 1}, {22, 2}, {30, 3}, {31, 4}},
			Labels:      []int{0, 0, 1, 1},
		},
		Catalog: recommend.ClusterCatalog{
			0: {{FoodID: 101, Score: 5}, {FoodID: 102, Score: 4}},
			1: {{FoodID: 201, Score: 6}},
		},
		Foods: recommend.FoodMacroTable{
			101: {CarbPct: 0.6, ProteinPct: 0.2, FatPct: 0.2},
		},
	}
}

func testEngine(t *testing.T) *recommend.Engine {
	t.Helper()
	e, err := recommend.NewEngine(nil, testArtifacts(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// fakeEngine returns canned results or errors.
type fakeEngine struct {
	err error
}

func (f *fakeEngine) Recommend(_ context.Context, req *recommend.Request) (*recommend.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.Result{UserID: req.UserID, Path: recommend.PathColdStart}, nil
}

func (f *fakeEngine) Artifacts() *recommend.Artifacts { return testArtifacts() }
func (f *fakeEngine) Stats() recommend.Stats          { return recommend.Stats{} }

// fakeQueue records enqueued jobs.
type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*jobs.Job
	err     error
	partial int
}

func (q *fakeQueue) Enqueue(_ context.Context, job *jobs.Job) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, job)
	return "job-1", nil
}

func (q *fakeQueue) EnqueueBatch(_ context.Context, batch []*jobs.Job) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(batch))
	for i, job := range batch {
		if q.err != nil && i >= q.partial {
			return ids, q.err
		}
		q.jobs = append(q.jobs, job)
		ids = append(ids, fmt.Sprintf("job-%d", i))
	}
	return ids, nil
}

// downStore fails every call.
type downStore struct{ *cache.MemoryStore }

var errDown = errors.New("store down")

func (downStore) Get(context.Context, string) ([]byte, error) { return nil, errDown }
func (downStore) Ping(context.Context) error                  { return errDown }

// gatedStore holds the first Get until release is closed. Get honors ctx
// like a network-backed store would.
type gatedStore struct {
	*cache.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: cache.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.MemoryStore.Get(ctx, key)
}

func newTestServer(t *testing.T, engine Engine, queue JobQueue, store cache.Store) http.Handler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true
	s, err := NewServer(cfg, engine, queue, store, zerolog.Nop(), WithVersion("test"))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *APIError       `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  82,
		"features": map[string]interface{}{"bmi": 22.0, "activity": 2, "gender": 1, "age": 30},
		"recent_records": []map[string]interface{}{
			{"food_id": 101, "date": "2026-01-01"},
		},
		"top_n": 5,
	}
}
