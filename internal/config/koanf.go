// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/nutrirank/internal/api"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/nutrirank/config.yaml",
	"/etc/nutrirank/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. Engine, job and API values
// come from their packages so there is one source for each default.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	jobsCfg := jobs.DefaultConfig()
	natsCfg := jobs.DefaultNATSConfig()
	apiCfg := api.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  apiCfg.RequestTimeout,
			MaxBodyBytes:    apiCfg.MaxBodyBytes,
			MaxBatchSize:    apiCfg.MaxBatchSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Artifacts: ArtifactsConfig{
			ModelPath:   "/data/model/cluster_model.json",
			CatalogPath: "/data/model/cluster_catalog.json",
			FoodsPath:   "/data/model/foods.csv",
			LoadTimeout: 2 * time.Minute,
		},
		Recommend: RecommendConfig{
			Strategy:                 string(engine.Strategy),
			DecayFactor:              engine.DecayFactor,
			NutritionWeight:          engine.NutritionWeight,
			FrequencyScale:           engine.FrequencyScale,
			TopN:                     engine.TopN,
			WarmThreshold:            engine.WarmThreshold,
			ThresholdMode:            string(engine.ThresholdMode),
			DeriveProfileFromHistory: engine.DeriveProfileFromHistory,
			Nutrition: NutritionConfig{
				Profile: recommend.ProfileBalanced,
			},
		},
		Cache: CacheConfig{
			Backend:             "memory",
			Path:                "/data/cache",
			MaintenanceInterval: 5 * time.Minute,
			Breaker: CacheBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				Timeout:          30 * time.Second,
				Interval:         time.Minute,
			},
		},
		Jobs: JobsConfig{
			Transport:            string(jobsCfg.Transport),
			Topic:                jobsCfg.Topic,
			PoisonTopic:          jobsCfg.PoisonTopic,
			Timeout:              jobsCfg.Timeout,
			ResultTTL:            jobsCfg.ResultTTL,
			LockTTL:              jobsCfg.LockTTL,
			BatchRatePerSecond:   jobsCfg.BatchRatePerSecond,
			BatchBurst:           jobsCfg.BatchBurst,
			RetryMaxRetries:      jobsCfg.RetryMaxRetries,
			RetryInitialInterval: jobsCfg.RetryInitialInterval,
			RetryMaxInterval:     jobsCfg.RetryMaxInterval,
			RetryMultiplier:      jobsCfg.RetryMultiplier,
			CloseTimeout:         jobsCfg.CloseTimeout,
			ChannelBuffer:        jobsCfg.ChannelBuffer,
			ModelVersion:         jobsCfg.ModelVersion,
		},
		NATS: NATSConfig{
			URL:              natsCfg.URL,
			EmbeddedServer:   natsCfg.EmbeddedServer,
			ServerHost:       natsCfg.ServerHost,
			ServerPort:       natsCfg.ServerPort,
			StoreDir:         natsCfg.StoreDir,
			MaxReconnects:    natsCfg.MaxReconnects,
			ReconnectWait:    natsCfg.ReconnectWait,
			StreamName:       natsCfg.StreamName,
			MaxAge:           natsCfg.MaxAge,
			DurableName:      natsCfg.DurableName,
			QueueGroup:       natsCfg.QueueGroup,
			SubscribersCount: natsCfg.SubscribersCount,
			AckWait:          natsCfg.AckWait,
			MaxDeliver:       natsCfg.MaxDeliver,
			PublisherBreaker: natsCfg.PublisherBreaker,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   apiCfg.RateLimitRequests,
			RateLimitWindow: apiCfg.RateLimitWindow,
			HealthRateLimit: apiCfg.HealthRateLimit,
		},
	}
}

// Load reads defaults, the optional config file and mapped environment
// variables, then validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to config
// paths. Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_request_timeout":  "server.request_timeout",
	"http_max_body_bytes":   "server.max_body_bytes",
	"http_max_batch_size":   "server.max_batch_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Artifacts
	"model_path":             "artifacts.model_path",
	"catalog_path":           "artifacts.catalog_path",
	"foods_path":             "artifacts.foods_path",
	"artifacts_load_timeout": "artifacts.load_timeout",

	// Engine
	"recommend_strategy":                    "recommend.strategy",
	"recommend_decay_factor":                "recommend.decay_factor",
	"recommend_nutrition_weight":            "recommend.nutrition_weight",
	"recommend_frequency_scale":             "recommend.frequency_scale",
	"recommend_top_n":                       "recommend.top_n",
	"recommend_warm_threshold":              "recommend.warm_threshold",
	"recommend_threshold_mode":              "recommend.threshold_mode",
	"recommend_derive_profile_from_history": "recommend.derive_profile_from_history",
	"recommend_nutrition_profile":           "recommend.nutrition.profile",
	"recommend_deficit_threshold":           "recommend.nutrition.deficit_threshold",
	"recommend_gentle_penalty_factor":       "recommend.nutrition.gentle_penalty_factor",

	// Cache
	"cache_backend":                   "cache.backend",
	"cache_path":                      "cache.path",
	"cache_sync_writes":               "cache.sync_writes",
	"cache_maintenance_interval":      "cache.maintenance_interval",
	"cache_breaker_enabled":           "cache.breaker.enabled",
	"cache_breaker_failure_threshold": "cache.breaker.failure_threshold",
	"cache_breaker_timeout":           "cache.breaker.timeout",

	// Jobs
	"jobs_transport":             "jobs.transport",
	"jobs_topic":                 "jobs.topic",
	"jobs_poison_topic":          "jobs.poison_topic",
	"jobs_timeout":               "jobs.timeout",
	"jobs_result_ttl":            "jobs.result_ttl",
	"jobs_lock_ttl":              "jobs.lock_ttl",
	"jobs_batch_rate_per_second": "jobs.batch_rate_per_second",
	"jobs_batch_burst":           "jobs.batch_burst",
	"jobs_retry_max_retries":     "jobs.retry_max_retries",
	"jobs_channel_buffer":        "jobs.channel_buffer",
	"model_version":              "jobs.model_version",

	// NATS
	"nats_url":               "nats.url",
	"nats_embedded":          "nats.embedded_server",
	"nats_server_host":       "nats.server_host",
	"nats_server_port":       "nats.server_port",
	"nats_store_dir":         "nats.store_dir",
	"nats_stream_name":       "nats.stream_name",
	"nats_max_age":           "nats.max_age",
	"nats_durable_name":      "nats.durable_name",
	"nats_queue_group":       "nats.queue_group",
	"nats_subscribers":       "nats.subscribers_count",
	"nats_ack_wait":          "nats.ack_wait",
	"nats_max_deliver":       "nats.max_deliver",
	"nats_publisher_breaker": "nats.publisher_breaker",

	// Security
	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"health_rate_limit":  "security.health_rate_limit",
}

// envTransformFunc maps an environment variable name to a config path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
