// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func TestEmbeddedServer(t *testing.T) {
	t.Parallel()

	cfg := DefaultNATSConfig()
	cfg.EmbeddedServer = true
	cfg.ServerPort = -1 // random free port
	cfg.StoreDir = t.TempDir()

	srv, err := StartEmbeddedServer(&cfg)
	if err != nil {
		t.Fatalf("StartEmbeddedServer() error = %v", err)
	}
	defer srv.Shutdown()

	if !srv.IsRunning() || srv.ClientURL() == "" {
		t.Fatalf("server running = %v, url = %q", srv.IsRunning(), srv.ClientURL())
	}

	cfg.URL = srv.ClientURL()
	if err := provisionStream(&cfg, []string{DefaultTopic, DefaultPoisonTopic}); err != nil {
		t.Fatalf("provisionStream() error = %v", err)
	}

	nc, err := natsgo.Connect(cfg.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		t.Fatalf("stream %s not provisioned: %v", cfg.StreamName, err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.Retention != jetstream.WorkQueuePolicy {
		t.Errorf("retention = %v, want work queue", info.Config.Retention)
	}

	// Provisioning twice updates in place.
	if err := provisionStream(&cfg, []string{DefaultTopic, DefaultPoisonTopic}); err != nil {
		t.Errorf("second provisionStream() error = %v", err)
	}
}
