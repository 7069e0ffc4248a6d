// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"errors"
	"fmt"
	"time"
)

// TransportKind selects the message broker behind the queue.
type TransportKind string

const (
	// TransportChannel keeps jobs in process (watermill gochannel).
	TransportChannel TransportKind = "channel"
	// TransportNATS routes jobs through NATS JetStream.
	TransportNATS TransportKind = "nats"
)

// Default topics.
const (
	DefaultTopic       = "recommendation.jobs"
	DefaultPoisonTopic = "recommendation.jobs.poison"
)

// Config configures the queue, the worker and the router.
type Config struct {
	Transport TransportKind

	Topic       string
	PoisonTopic string

	// Timeout bounds one job run. It may not exceed LockTTL. Default: 5m.
	Timeout time.Duration
	// ResultTTL is the lifetime of recommendation:{user_id}. Default: 1h.
	ResultTTL time.Duration
	// LockTTL is the lifetime of training_lock:{user_id}. Default: 300s.
	LockTTL time.Duration

	// BatchRatePerSecond paces EnqueueBatch. Zero disables pacing.
	BatchRatePerSecond float64
	BatchBurst         int

	// Router retry for store failures.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	CloseTimeout         time.Duration

	// ChannelBuffer is the gochannel output buffer size.
	ChannelBuffer int64

	// ModelVersion is written into run metadata.
	ModelVersion string
}

// DefaultConfig returns the production job settings.
func DefaultConfig() Config {
	return Config{
		Transport:            TransportChannel,
		Topic:                DefaultTopic,
		PoisonTopic:          DefaultPoisonTopic,
		Timeout:              5 * time.Minute,
		ResultTTL:            time.Hour,
		LockTTL:              300 * time.Second,
		BatchRatePerSecond:   50,
		BatchBurst:           10,
		RetryMaxRetries:      3,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     30 * time.Second,
		RetryMultiplier:      2.0,
		CloseTimeout:         30 * time.Second,
		ChannelBuffer:        256,
		ModelVersion:         "v1",
	}
}

// Validate checks the job configuration.
func (c *Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportChannel, TransportNATS:
	default:
		errs = append(errs, fmt.Errorf("jobs.transport must be %q or %q, got %q", TransportChannel, TransportNATS, c.Transport))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("jobs.topic is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("jobs.timeout must be positive"))
	}
	if c.ResultTTL <= 0 {
		errs = append(errs, errors.New("jobs.result_ttl must be positive"))
	}
	if c.LockTTL <= 0 {
		errs = append(errs, errors.New("jobs.lock_ttl must be positive"))
	}
	if c.Timeout > 0 && c.LockTTL > 0 && c.Timeout > c.LockTTL {
		errs = append(errs, fmt.Errorf("jobs.timeout (%s) must not exceed jobs.lock_ttl (%s)", c.Timeout, c.LockTTL))
	}
	if c.BatchRatePerSecond < 0 {
		errs = append(errs, errors.New("jobs.batch_rate_per_second must be non-negative"))
	}
	if c.RetryMaxRetries < 0 {
		errs = append(errs, errors.New("jobs.retry_max_retries must be non-negative"))
	}
	return errors.Join(errs...)
}

// NATSConfig configures the NATS transport and the optional embedded server.
type NATSConfig struct {
	URL string

	EmbeddedServer bool
	ServerHost     string
	ServerPort     int
	StoreDir       string

	MaxReconnects int
	ReconnectWait time.Duration

	StreamName string
	MaxAge     time.Duration

	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWait          time.Duration
	MaxDeliver       int

	// PublisherBreaker guards publishes with a circuit breaker.
	PublisherBreaker bool
}

// DefaultNATSConfig returns defaults for a single-node deployment.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:              "nats://127.0.0.1:4222",
		ServerHost:       "127.0.0.1",
		ServerPort:       4222,
		StoreDir:         "/data/nats/jetstream",
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       "RECOMMENDATION_JOBS",
		MaxAge:           24 * time.Hour,
		DurableName:      "nutrirank-worker",
		QueueGroup:       "nutrirank-workers",
		SubscribersCount: 2,
		AckWait:          6 * time.Minute,
		MaxDeliver:       5,
		PublisherBreaker: true,
	}
}

// Validate checks the NATS configuration.
func (c *NATSConfig) Validate() error {
	if c.URL == "" && !c.EmbeddedServer {
		return errors.New("nats.url is required unless nats.embedded_server is set")
	}
	if c.EmbeddedServer && c.StoreDir == "" {
		return errors.New("nats.store_dir is required for the embedded server")
	}
	if c.SubscribersCount < 1 {
		return errors.New("nats.subscribers_count must be at least 1")
	}
	return nil
}
