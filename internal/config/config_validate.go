// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/logging"
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateLogging(),
		c.wrap("artifacts", c.ArtifactsConfig().Validate()),
		c.validateRecommend(),
		c.validateCache(),
		c.JobsConfig().Validate(),
		c.validateNATS(),
		c.wrap("security", c.APIConfig().Validate()),
	)
}

func (c *Config) wrap(section string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", section, err)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	var errs []error
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (c *Config) validateRecommend() error {
	rc, err := c.RecommendConfig()
	if err != nil {
		return err
	}
	return c.wrap("recommend", rc.Validate())
}

func (c *Config) validateCache() error {
	switch cache.Backend(c.Cache.Backend) {
	case cache.BackendMemory:
	case cache.BackendBadger:
		if c.Cache.Path == "" {
			return errors.New("cache.path is required for the badger backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or badger, got %q", c.Cache.Backend)
	}
	if c.Cache.MaintenanceInterval <= 0 {
		return errors.New("cache.maintenance_interval must be positive")
	}
	return nil
}

// validateNATS only applies when the NATS transport is selected.
func (c *Config) validateNATS() error {
	if jobs.TransportKind(c.Jobs.Transport) != jobs.TransportNATS {
		return nil
	}
	if !c.NATS.EmbeddedServer {
		if err := validateNATSURL(c.NATS.URL); err != nil {
			return fmt.Errorf("nats.url: %w", err)
		}
	}
	return c.NATSOptions().Validate()
}
