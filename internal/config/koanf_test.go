// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Tests in this file use t.Setenv and therefore do not run in parallel.

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Jobs.Transport != "channel" {
		t.Errorf("cfg = %+v", cfg.Server)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8080
recommend:
  warm_threshold: 20
  threshold_mode: gt
  nutrition:
    profile: amdr-strict
cache:
  backend: badger
  path: /tmp/nutrirank-cache
jobs:
  timeout: 90s
  lock_ttl: 2m
security:
  cors_origins:
    - https://app.example.com
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Recommend.WarmThreshold != 20 || cfg.Recommend.ThresholdMode != "gt" {
		t.Errorf("recommend = %+v", cfg.Recommend)
	}
	if cfg.Recommend.Nutrition.Profile != "amdr-strict" {
		t.Errorf("profile = %q", cfg.Recommend.Nutrition.Profile)
	}
	if cfg.Jobs.LockTTL != 2*time.Minute {
		t.Errorf("LockTTL = %v, want 2m", cfg.Jobs.LockTTL)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	// Untouched values keep their defaults.
	if cfg.Recommend.DecayFactor != 0.9 {
		t.Errorf("DecayFactor = %v, want default 0.9", cfg.Recommend.DecayFactor)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8080\n")

	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RECOMMEND_DECAY_FACTOR", "0.85")
	t.Setenv("JOBS_RESULT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 from env", cfg.Server.Port)
	}
	if cfg.Recommend.DecayFactor != 0.85 {
		t.Errorf("DecayFactor = %v, want 0.85", cfg.Recommend.DecayFactor)
	}
	if cfg.Jobs.ResultTTL != 30*time.Minute {
		t.Errorf("ResultTTL = %v, want 30m", cfg.Jobs.ResultTTL)
	}
	if got := cfg.Security.CORSOrigins; len(got) != 2 || got[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFile_InvalidValues(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := LoadFile("")
	if err == nil || !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("LoadFile() = %v, want cache.backend validation error", err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() should fail for an explicit missing file")
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 7070\n")
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":                   "server.port",
		"RECOMMEND_NUTRITION_PROFILE": "recommend.nutrition.profile",
		"NATS_URL":                    "nats.url",
		"CACHE_BACKEND":               "cache.backend",
		"PATH":                        "",
	}
	for key, want := range tests {
		if got := envTransformFunc(key); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", key, got, want)
		}
	}
}
