// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

/*
Package config loads the service configuration with koanf v2.

Sources are layered, later ones winning:

 1. Built-in defaults (defaultConfig, loaded through structs.Provider)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/nutrirank/config.yaml or /etc/nutrirank/config.yml
 3. Environment variables listed in envMappings

Only mapped environment variables are read, so unrelated variables never
leak into the configuration:

	HTTP_PORT=8080
	LOG_LEVEL=debug
	MODEL_PATH=/data/model.json
	RECOMMEND_DECAY_FACTOR=0.85
	RECOMMEND_NUTRITION_PROFILE=amdr-strict
	CACHE_BACKEND=badger
	JOBS_TRANSPORT=nats
	NATS_URL=nats://nats:4222
	CORS_ORIGINS=https://app.example.com,https://admin.example.com

Durations accept Go syntax ("30s", "10m"). Comma-separated values are
split for the slice fields listed in sliceConfigPaths.

Each section converts into the options struct of the package it configures
(APIConfig, RecommendConfig, CacheConfig, JobsConfig, ...), so those
packages stay free of koanf tags.
*/
package config
