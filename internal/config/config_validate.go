// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateUpstream("catalog", "BOOKSERVICE_REPOSITORY_URL", &c.Catalog); err != nil {
		return err
	}

	if err := c.validateUpstream("reservations", "BOOKSERVICE_RESERVATIONS_URL", &c.Reservations); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateTracing(); err != nil {
		return err
	}

	return validateSection("logging", &c.Logging)
}

// validateSection runs the struct tag rules of one config section.
func validateSection(name string, section interface{}) error {
	if verr := validation.ValidateStruct(section); verr != nil {
		return fmt.Errorf("%s: %w", name, verr)
	}
	return nil
}

// validateUpstream validates one upstream service section
func (c *Config) validateUpstream(name, envName string, u *UpstreamConfig) error {
	if err := validateSection(name, u); err != nil {
		return err
	}
	if err := validateHTTPURL(u.URL, envName); err != nil {
		return fmt.Errorf("%s is invalid: %w", envName, err)
	}
	return nil
}

// validateRecommend validates the updater schedule
func (c *Config) validateRecommend() error {
	if err := validateSection("recommend", &c.Recommend); err != nil {
		return err
	}

	r := c.Recommend
	if r.ShardCount > r.FullCycleTicks {
		return fmt.Errorf("RECOMMEND_SHARD_COUNT (%d) must not exceed RECOMMEND_FULL_CYCLE_TICKS (%d)",
			r.ShardCount, r.FullCycleTicks)
	}
	if r.FullCycleTicks%r.ShardCount != 0 {
		return fmt.Errorf("RECOMMEND_FULL_CYCLE_TICKS (%d) must be a multiple of RECOMMEND_SHARD_COUNT (%d)",
			r.FullCycleTicks, r.ShardCount)
	}
	return nil
}

// validateServer validates HTTP server and request limiting settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if err := validateSection("server", &c.Server); err != nil {
		return err
	}
	return validateSection("security", &c.Security)
}

// validateTracing validates the exporter settings (only if enabled)
func (c *Config) validateTracing() error {
	if !c.Tracing.Enabled {
		return nil
	}
	if err := validateHostPort(c.Tracing.Endpoint, "TRACING_ENDPOINT"); err != nil {
		return err
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	if c.Tracing.ServiceName == "" {
		return fmt.Errorf("TRACING_SERVICE_NAME is required when TRACING_ENABLED=true")
	}
	return nil
}
