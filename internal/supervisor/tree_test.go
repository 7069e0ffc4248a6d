// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/nutrirank/internal/logging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("Root() = nil")
	}
	if got := tree.Config(); got != DefaultTreeConfig() {
		t.Errorf("Config() = %+v, want defaults %+v", got, DefaultTreeConfig())
	}
}

func TestNewSupervisorTree_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: 3 * time.Second}
	tree, err := NewSupervisorTree(nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Config() != cfg {
		t.Errorf("Config() = %+v, want %+v", tree.Config(), cfg)
	}
}

func TestSupervisorTree_Lifecycle(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(logging.NewSlogLogger(zerolog.Nop()), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	services := []*mockService{newMockService("data"), newMockService("messaging"), newMockService("api")}
	tree.AddDataService(services[0])
	tree.AddMessagingService(services[1])
	tree.AddAPIService(services[2])

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, 2*time.Second, func() bool {
		for _, s := range services {
			if s.starts.Load() == 0 {
				return false
			}
		}
		return true
	})

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	for _, s := range services {
		if s.stops.Load() != s.starts.Load() {
			t.Errorf("%s: %d starts, %d stops", s, s.starts.Load(), s.stops.Load())
		}
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   50 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	flaky := newMockService("flaky-router")
	flaky.setFailCount(3)
	tree.AddMessagingService(flaky)

	steady := newMockService("http")
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	// Three failures then a run that blocks until shutdown.
	waitFor(t, 3*time.Second, func() bool { return flaky.starts.Load() >= 4 })

	if steady.starts.Load() != 1 {
		t.Errorf("api service restarted %d times, want one start", steady.starts.Load())
	}

	cancel()
	<-errCh
}

func TestSupervisorTree_RemoveMessagingService(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	svc := newMockService("router")
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, 2*time.Second, func() bool { return svc.starts.Load() == 1 })

	if err := tree.RemoveMessagingService(token); err != nil {
		t.Fatalf("RemoveMessagingService() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return svc.stops.Load() == 1 })

	cancel()
	<-errCh
}
