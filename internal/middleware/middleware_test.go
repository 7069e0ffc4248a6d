// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		wantReused bool
	}{
		{"generated when absent", "", false},
		{"reused from upstream", "req-123_abc", true},
		{"replaced when unsafe", "bad id\nwith newline", false},
		{"replaced when too long", strings.Repeat("a", maxIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seenRequestID, seenCorrelation string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenRequestID = logging.RequestIDFromContext(r.Context())
				seenCorrelation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if got == "" || got != seenRequestID {
				t.Fatalf("header %q, context %q", got, seenRequestID)
			}
			if (got == tt.header) != tt.wantReused {
				t.Errorf("request id = %q, reused = %v, want %v", got, got == tt.header, tt.wantReused)
			}
			if seenCorrelation == "" || rec.Header().Get(HeaderCorrelationID) != seenCorrelation {
				t.Errorf("correlation id header %q, context %q", rec.Header().Get(HeaderCorrelationID), seenCorrelation)
			}
		})
	}
}

func TestRequestID_ReusesCorrelationID(t *testing.T) {
	t.Parallel()

	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderCorrelationID); got != "corr-1" {
		t.Errorf("correlation id = %q, want corr-1", got)
	}
}

func TestRoutePattern(t *testing.T) {
	t.Parallel()

	var pattern string
	r := chi.NewRouter()
	r.Get("/api/v1/recommendations/{user_id}", func(w http.ResponseWriter, req *http.Request) {
		pattern = RoutePattern(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/82", nil))
	if pattern != "/api/v1/recommendations/{user_id}" {
		t.Errorf("RoutePattern() = %q", pattern)
	}

	if got := RoutePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != UnmatchedRoute {
		t.Errorf("RoutePattern(no chi) = %q, want %q", got, UnmatchedRoute)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Post("/metrics-test/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/metrics-test/{id}", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/metrics-test/"+id, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests recorded = %v, want 3 under one route label", got)
	}
}

func TestStatusWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)
	if _, err := sw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	sw.WriteHeader(http.StatusTeapot)

	if sw.status != http.StatusOK {
		t.Errorf("status = %d, want implicit 200 from first write", sw.status)
	}
	if sw.bytes != 5 {
		t.Errorf("bytes = %d, want 5", sw.bytes)
	}
	if newStatusWriter(sw) != sw {
		t.Error("newStatusWriter should not double-wrap")
	}
}

func TestAccessLog(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.DebugLevel)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(logging.ContextWithLogger(req.Context(), base)))
		})
	})
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"route":"/boom"`, `"status":500`, `"request_id"`, `"message":"http request"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s missing %s", out, want)
		}
	}
}
