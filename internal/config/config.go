// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/nutrirank/internal/api"
	"github.com/tomtom215/nutrirank/internal/artifacts"
	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Jobs      JobsConfig      `koanf:"jobs"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	MaxBatchSize    int           `koanf:"max_batch_size"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ArtifactsConfig locates the precomputed model files.
type ArtifactsConfig struct {
	ModelPath   string        `koanf:"model_path"`
	CatalogPath string        `koanf:"catalog_path"`
	FoodsPath   string        `koanf:"foods_path"`
	LoadTimeout time.Duration `koanf:"load_timeout"`
}

// RecommendConfig tunes the engine.
type RecommendConfig struct {
	Strategy                 string          `koanf:"strategy"`
	DecayFactor              float64         `koanf:"decay_factor"`
	NutritionWeight          float64         `koanf:"nutrition_weight"`
	FrequencyScale           float64         `koanf:"frequency_scale"`
	TopN                     int             `koanf:"top_n"`
	WarmThreshold            int             `koanf:"warm_threshold"`
	ThresholdMode            string          `koanf:"threshold_mode"`
	DeriveProfileFromHistory bool            `koanf:"derive_profile_from_history"`
	Nutrition                NutritionConfig `koanf:"nutrition"`
}

// NutritionConfig picks a named scorer profile. Non-zero overrides replace
// the profile's value.
type NutritionConfig struct {
	Profile             string  `koanf:"profile"`
	DeficitThreshold    float64 `koanf:"deficit_threshold"`
	GentlePenaltyFactor float64 `koanf:"gentle_penalty_factor"`
}

// CacheConfig selects the result and lock store.
type CacheConfig struct {
	Backend             string             `koanf:"backend"`
	Path                string             `koanf:"path"`
	SyncWrites          bool               `koanf:"sync_writes"`
	MaintenanceInterval time.Duration      `koanf:"maintenance_interval"`
	Breaker             CacheBreakerConfig `koanf:"breaker"`
}

// CacheBreakerConfig configures the store circuit breaker.
type CacheBreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	Timeout          time.Duration `koanf:"timeout"`
	Interval         time.Duration `koanf:"interval"`
}

// JobsConfig configures the asynchronous job pipeline.
type JobsConfig struct {
	Transport            string        `koanf:"transport"`
	Topic                string        `koanf:"topic"`
	PoisonTopic          string        `koanf:"poison_topic"`
	Timeout              time.Duration `koanf:"timeout"`
	ResultTTL            time.Duration `koanf:"result_ttl"`
	LockTTL              time.Duration `koanf:"lock_ttl"`
	BatchRatePerSecond   float64       `koanf:"batch_rate_per_second"`
	BatchBurst           int           `koanf:"batch_burst"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	ChannelBuffer        int64         `koanf:"channel_buffer"`
	ModelVersion         string        `koanf:"model_version"`
}

// NATSConfig configures the NATS JetStream transport. It is only read when
// jobs.transport is "nats".
type NATSConfig struct {
	URL              string        `koanf:"url"`
	EmbeddedServer   bool          `koanf:"embedded_server"`
	ServerHost       string        `koanf:"server_host"`
	ServerPort       int           `koanf:"server_port"`
	StoreDir         string        `koanf:"store_dir"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	StreamName       string        `koanf:"stream_name"`
	MaxAge           time.Duration `koanf:"max_age"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWait          time.Duration `koanf:"ack_wait"`
	MaxDeliver       int           `koanf:"max_deliver"`
	PublisherBreaker bool          `koanf:"publisher_breaker"`
}

// SecurityConfig configures CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	HealthRateLimit   int           `koanf:"health_rate_limit"`
}

// LoggingOptions converts the logging section.
func (c *Config) LoggingOptions() logging.Config {
	opts := logging.DefaultConfig()
	opts.Level = c.Logging.Level
	opts.Format = c.Logging.Format
	opts.Caller = c.Logging.Caller
	return opts
}

// APIConfig converts the server and security sections.
func (c *Config) APIConfig() *api.Config {
	return &api.Config{
		CORSAllowedOrigins: c.Security.CORSOrigins,
		RateLimitRequests:  c.Security.RateLimitReqs,
		RateLimitWindow:    c.Security.RateLimitWindow,
		RateLimitDisabled:  c.Security.RateLimitDisabled,
		HealthRateLimit:    c.Security.HealthRateLimit,
		MaxBodyBytes:       c.Server.MaxBodyBytes,
		MaxBatchSize:       c.Server.MaxBatchSize,
		RequestTimeout:     c.Server.RequestTimeout,
	}
}

// ArtifactsConfig converts the artifacts section.
func (c *Config) ArtifactsConfig() *artifacts.Config {
	return &artifacts.Config{
		ModelPath:   c.Artifacts.ModelPath,
		CatalogPath: c.Artifacts.CatalogPath,
		FoodsPath:   c.Artifacts.FoodsPath,
		Timeout:     c.Artifacts.LoadTimeout,
	}
}

// RecommendConfig converts the recommend section, resolving the nutrition
// profile by name.
func (c *Config) RecommendConfig() (*recommend.Config, error) {
	nutrition, err := recommend.NutritionProfile(c.Recommend.Nutrition.Profile)
	if err != nil {
		return nil, fmt.Errorf("recommend.nutrition.profile: %w", err)
	}
	if v := c.Recommend.Nutrition.DeficitThreshold; v != 0 {
		nutrition.DeficitThreshold = v
	}
	if v := c.Recommend.Nutrition.GentlePenaltyFactor; v != 0 {
		nutrition.GentlePenaltyFactor = v
	}

	return &recommend.Config{
		Strategy:                 recommend.Strategy(c.Recommend.Strategy),
		DecayFactor:              c.Recommend.DecayFactor,
		NutritionWeight:          c.Recommend.NutritionWeight,
		FrequencyScale:           c.Recommend.FrequencyScale,
		TopN:                     c.Recommend.TopN,
		WarmThreshold:            c.Recommend.WarmThreshold,
		ThresholdMode:            recommend.ThresholdMode(c.Recommend.ThresholdMode),
		DeriveProfileFromHistory: c.Recommend.DeriveProfileFromHistory,
		Nutrition:                nutrition,
	}, nil
}

// CacheConfig converts the cache section.
func (c *Config) CacheConfig() *cache.Config {
	return &cache.Config{
		Backend:    cache.Backend(c.Cache.Backend),
		Path:       c.Cache.Path,
		SyncWrites: c.Cache.SyncWrites,
		Breaker: cache.BreakerConfig{
			Enabled:          c.Cache.Breaker.Enabled,
			FailureThreshold: c.Cache.Breaker.FailureThreshold,
			Timeout:          c.Cache.Breaker.Timeout,
			Interval:         c.Cache.Breaker.Interval,
		},
	}
}

// JobsConfig converts the jobs section.
func (c *Config) JobsConfig() *jobs.Config {
	j := c.Jobs
	return &jobs.Config{
		Transport:            jobs.TransportKind(j.Transport),
		Topic:                j.Topic,
		PoisonTopic:          j.PoisonTopic,
		Timeout:              j.Timeout,
		ResultTTL:            j.ResultTTL,
		LockTTL:              j.LockTTL,
		BatchRatePerSecond:   j.BatchRatePerSecond,
		BatchBurst:           j.BatchBurst,
		RetryMaxRetries:      j.RetryMaxRetries,
		RetryInitialInterval: j.RetryInitialInterval,
		RetryMaxInterval:     j.RetryMaxInterval,
		RetryMultiplier:      j.RetryMultiplier,
		CloseTimeout:         j.CloseTimeout,
		ChannelBuffer:        j.ChannelBuffer,
		ModelVersion:         j.ModelVersion,
	}
}

// NATSOptions converts the nats section.
func (c *Config) NATSOptions() *jobs.NATSConfig {
	n := c.NATS
	return &jobs.NATSConfig{
		URL:              n.URL,
		EmbeddedServer:   n.EmbeddedServer,
		ServerHost:       n.ServerHost,
		ServerPort:       n.ServerPort,
		StoreDir:         n.StoreDir,
		MaxReconnects:    n.MaxReconnects,
		ReconnectWait:    n.ReconnectWait,
		StreamName:       n.StreamName,
		MaxAge:           n.MaxAge,
		DurableName:      n.DurableName,
		QueueGroup:       n.QueueGroup,
		SubscribersCount: n.SubscribersCount,
		AckWait:          n.AckWait,
		MaxDeliver:       n.MaxDeliver,
		PublisherBreaker: n.PublisherBreaker,
	}
}
