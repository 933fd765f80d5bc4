// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

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

	"github.com/tomtom215/bookrec/internal/tracing"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookrec/config.yaml",
	"/etc/bookrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultUpstream returns the shared defaults of an upstream service.
func defaultUpstream(url string) UpstreamConfig {
	return UpstreamConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RateLimit:      0, // Unlimited
		RateBurst:      10,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
	}
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog:      defaultUpstream("http://localhost:8080"),
		Reservations: defaultUpstream("http://localhost:8081"),
		Recommend: RecommendConfig{
			RecommendationCount: 4,
			TickInterval:        10 * time.Second,
			FullCycleTicks:      200,
			ShardCount:          10,
			FetchConcurrency:    1, // Sequential, one request in flight per tick
			AbortOnError:        true,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BOOKSERVICE_REPOSITORY_URL -> catalog.url
	// RECOMMEND_SHARD_COUNT -> recommend.shard_count
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
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

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
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

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Catalog service (BOOKSERVICE_REPOSITORY_URL is the legacy name)
	"bookservice_repository_url":            "catalog.url",
	"catalog_url":                           "catalog.url",
	"catalog_timeout":                       "catalog.timeout",
	"catalog_rate_limit":                    "catalog.rate_limit",
	"catalog_rate_burst":                    "catalog.rate_burst",
	"catalog_max_retries":                   "catalog.max_retries",
	"catalog_retry_base_delay":              "catalog.retry_base_delay",
	"catalog_circuit_breaker_enabled":       "catalog.circuit_breaker.enabled",
	"catalog_circuit_breaker_timeout":       "catalog.circuit_breaker.timeout",
	"catalog_circuit_breaker_failure_ratio": "catalog.circuit_breaker.failure_ratio",
	"catalog_circuit_breaker_min_requests":  "catalog.circuit_breaker.min_requests",

	// Reservations service (BOOKSERVICE_RESERVATIONS_URL is the legacy name)
	"bookservice_reservations_url":               "reservations.url",
	"reservations_url":                           "reservations.url",
	"reservations_timeout":                       "reservations.timeout",
	"reservations_rate_limit":                    "reservations.rate_limit",
	"reservations_rate_burst":                    "reservations.rate_burst",
	"reservations_max_retries":                   "reservations.max_retries",
	"reservations_retry_base_delay":              "reservations.retry_base_delay",
	"reservations_circuit_breaker_enabled":       "reservations.circuit_breaker.enabled",
	"reservations_circuit_breaker_timeout":       "reservations.circuit_breaker.timeout",
	"reservations_circuit_breaker_failure_ratio": "reservations.circuit_breaker.failure_ratio",
	"reservations_circuit_breaker_min_requests":  "reservations.circuit_breaker.min_requests",

	// Recommendation schedule
	"recommendation_count":        "recommend.recommendation_count",
	"recommend_tick_interval":     "recommend.tick_interval",
	"recommend_full_cycle_ticks":  "recommend.full_cycle_ticks",
	"recommend_shard_count":       "recommend.shard_count",
	"recommend_fetch_concurrency": "recommend.fetch_concurrency",
	"recommend_abort_on_error":    "recommend.abort_on_error",

	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Tracing mappings
	"tracing_enabled":         "tracing.enabled",
	"tracing_endpoint":        "tracing.endpoint",
	"tracing_insecure":        "tracing.insecure",
	"tracing_sample_rate":     "tracing.sample_rate",
	"tracing_service_name":    "tracing.service_name",
	"tracing_service_version": "tracing.service_version",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BOOKSERVICE_REPOSITORY_URL -> catalog.url
//   - RESERVATIONS_MAX_RETRIES -> reservations.max_retries
//   - RECOMMEND_TICK_INTERVAL -> recommend.tick_interval
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// never reach the config.
	return ""
}
