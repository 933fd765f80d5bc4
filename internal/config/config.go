// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"os"
	"time"

	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/tracing"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Upstream services:
//     - Catalog: book catalog (BOOKSERVICE_REPOSITORY_URL)
//     - Reservations: users, reservations and history (BOOKSERVICE_RESERVATIONS_URL)
//
//  2. Recommendations:
//     - Recommend: tick interval, sharding and list length
//
//  3. Serving:
//     - Server: HTTP listener and timeouts
//     - Security: rate limiting and CORS
//
//  4. Observability:
//     - Logging: log level and output format
//     - Tracing: OpenTelemetry export
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	updater, err := recommend.NewUpdater(cfg.Recommend.ToRecommendConfig(), ...)
type Config struct {
	Catalog      UpstreamConfig  `koanf:"catalog"`
	Reservations UpstreamConfig  `koanf:"reservations"`
	Recommend    RecommendConfig `koanf:"recommend"`
	Server       ServerConfig    `koanf:"server"`
	Security     SecurityConfig  `koanf:"security"`
	Logging      LoggingConfig   `koanf:"logging"`
	Tracing      tracing.Config  `koanf:"tracing"`
}

// UpstreamConfig holds the settings of one upstream HTTP service.
type UpstreamConfig struct {
	URL     string        `koanf:"url" validate:"required,http_url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the maximum requests per second sent to the service. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`

	// MaxRetries bounds retries of rate limited (429) responses.
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig holds gobreaker settings for an upstream client.
type CircuitBreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// Timeout is how long the breaker stays open before trying half-open.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests and FailureRatio decide when the breaker trips.
	MinRequests  uint32  `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// RecommendConfig holds the updater schedule and engine settings.
type RecommendConfig struct {
	RecommendationCount int           `koanf:"recommendation_count" validate:"gte=1"`
	TickInterval        time.Duration `koanf:"tick_interval" validate:"gt=0"`
	FullCycleTicks      int           `koanf:"full_cycle_ticks" validate:"gte=1"`
	ShardCount          int           `koanf:"shard_count" validate:"gte=1"`
	FetchConcurrency    int           `koanf:"fetch_concurrency" validate:"gte=1"`
	AbortOnError        bool          `koanf:"abort_on_error"`
}

// ToRecommendConfig converts the loaded settings into the engine configuration.
func (c RecommendConfig) ToRecommendConfig() *recommend.Config {
	return &recommend.Config{
		RecommendationCount: c.RecommendationCount,
		Schedule: recommend.ScheduleConfig{
			TickInterval:     c.TickInterval,
			FullCycleTicks:   c.FullCycleTicks,
			ShardCount:       c.ShardCount,
			FetchConcurrency: c.FetchConcurrency,
			AbortOnError:     c.AbortOnError,
		},
	}
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SecurityConfig holds request rate limiting and CORS settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ToLoggingConfig converts the loaded settings into a logging.Config writing to stderr.
func (c LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:     c.Level,
		Format:    c.Format,
		Caller:    c.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	}
}
