// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServer runs a JetStream-enabled NATS server inside the process so
// a single node can use the NATS transport without external infrastructure.
type EmbeddedServer struct {
	server *server.Server
}

// StartEmbeddedServer starts the server and waits until it accepts
// connections.
func StartEmbeddedServer(cfg *NATSConfig) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "nutrirank",
		Host:       cfg.ServerHost,
		Port:       cfg.ServerPort,
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server not ready within 30s")
	}
	return &EmbeddedServer{server: ns}, nil
}

// ClientURL is the URL clients should connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.server.ClientURL()
}

// IsRunning reports whether the server is up.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
