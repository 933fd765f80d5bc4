// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// isolateEnv points the loader at an empty working directory with no config file.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "bookrec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() = %v", err)
	}

	if cfg.Catalog.URL != "http://localhost:8080" {
		t.Errorf("Catalog.URL = %q, want http://localhost:8080", cfg.Catalog.URL)
	}
	if cfg.Reservations.URL != "http://localhost:8081" {
		t.Errorf("Reservations.URL = %q, want http://localhost:8081", cfg.Reservations.URL)
	}
	if !cfg.Catalog.CircuitBreaker.Enabled {
		t.Error("Catalog.CircuitBreaker.Enabled should be true by default")
	}

	if cfg.Recommend.RecommendationCount != 4 {
		t.Errorf("Recommend.RecommendationCount = %d, want 4", cfg.Recommend.RecommendationCount)
	}
	if cfg.Recommend.TickInterval != 10*time.Second {
		t.Errorf("Recommend.TickInterval = %v, want 10s", cfg.Recommend.TickInterval)
	}
	if cfg.Recommend.FullCycleTicks != 200 {
		t.Errorf("Recommend.FullCycleTicks = %d, want 200", cfg.Recommend.FullCycleTicks)
	}
	if cfg.Recommend.ShardCount != 10 {
		t.Errorf("Recommend.ShardCount = %d, want 10", cfg.Recommend.ShardCount)
	}
	if cfg.Recommend.FetchConcurrency != 1 {
		t.Errorf("Recommend.FetchConcurrency = %d, want 1", cfg.Recommend.FetchConcurrency)
	}
	if !cfg.Recommend.AbortOnError {
		t.Error("Recommend.AbortOnError should be true by default")
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("Server = %s:%d, want 0.0.0.0:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should be false by default")
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Legacy names
		{"BOOKSERVICE_REPOSITORY_URL", "catalog.url"},
		{"BOOKSERVICE_RESERVATIONS_URL", "reservations.url"},

		// Upstream services
		{"CATALOG_URL", "catalog.url"},
		{"CATALOG_MAX_RETRIES", "catalog.max_retries"},
		{"RESERVATIONS_CIRCUIT_BREAKER_ENABLED", "reservations.circuit_breaker.enabled"},

		// Recommendations
		{"RECOMMENDATION_COUNT", "recommend.recommendation_count"},
		{"RECOMMEND_TICK_INTERVAL", "recommend.tick_interval"},
		{"RECOMMEND_SHARD_COUNT", "recommend.shard_count"},

		// Server and security
		{"HTTP_PORT", "server.port"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"CORS_ORIGINS", "security.cors_origins"},

		// Observability
		{"LOG_LEVEL", "logging.level"},
		{"TRACING_SAMPLE_RATE", "tracing.sample_rate"},

		// Case insensitive
		{"log_format", "logging.format"},

		// Unmapped
		{"PATH", ""},
		{"HOME", ""},
		{"CONFIG_PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	dir := isolateEnv(t)

	t.Run("no config file exists", func(t *testing.T) {
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(path)

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		custom := writeConfigFile(t, dir, "logging:\n  level: info\n")
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")

		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)

	t.Setenv("BOOKSERVICE_REPOSITORY_URL", "http://catalog.test:9001")
	t.Setenv("BOOKSERVICE_RESERVATIONS_URL", "http://reservations.test:9002")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_TICK_INTERVAL", "250ms")
	t.Setenv("RECOMMEND_FETCH_CONCURRENCY", "4")
	t.Setenv("RECOMMEND_ABORT_ON_ERROR", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Catalog.URL != "http://catalog.test:9001" {
		t.Errorf("Catalog.URL = %q, want http://catalog.test:9001", cfg.Catalog.URL)
	}
	if cfg.Reservations.URL != "http://reservations.test:9002" {
		t.Errorf("Reservations.URL = %q, want http://reservations.test:9002", cfg.Reservations.URL)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.TickInterval != 250*time.Millisecond {
		t.Errorf("Recommend.TickInterval = %v, want 250ms", cfg.Recommend.TickInterval)
	}
	if cfg.Recommend.FetchConcurrency != 4 {
		t.Errorf("Recommend.FetchConcurrency = %d, want 4", cfg.Recommend.FetchConcurrency)
	}
	if cfg.Recommend.AbortOnError {
		t.Error("Recommend.AbortOnError = true, want false")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !slices.Equal(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}

	// Defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.ShardCount != 10 {
		t.Errorf("Recommend.ShardCount = %d, want 10 (default)", cfg.Recommend.ShardCount)
	}
	if cfg.Catalog.Timeout != 10*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 10s (default)", cfg.Catalog.Timeout)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := isolateEnv(t)

	path := writeConfigFile(t, dir, `
catalog:
  url: "http://catalog.file:8080"
  timeout: 3s
  circuit_breaker:
    enabled: false

recommend:
  full_cycle_ticks: 40
  shard_count: 4
  recommendation_count: 6

server:
  port: 8888
  host: "127.0.0.1"

logging:
  level: "warn"
`)
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Catalog.URL != "http://catalog.file:8080" {
		t.Errorf("Catalog.URL = %q, want http://catalog.file:8080", cfg.Catalog.URL)
	}
	if cfg.Catalog.Timeout != 3*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 3s", cfg.Catalog.Timeout)
	}
	if cfg.Catalog.CircuitBreaker.Enabled {
		t.Error("Catalog.CircuitBreaker.Enabled = true, want false")
	}
	if cfg.Catalog.CircuitBreaker.MaxRequests != 3 {
		t.Errorf("Catalog.CircuitBreaker.MaxRequests = %d, want 3 (default)", cfg.Catalog.CircuitBreaker.MaxRequests)
	}
	if cfg.Recommend.FullCycleTicks != 40 || cfg.Recommend.ShardCount != 4 {
		t.Errorf("Recommend cycle = %d/%d, want 40/4", cfg.Recommend.FullCycleTicks, cfg.Recommend.ShardCount)
	}
	if cfg.Recommend.RecommendationCount != 6 {
		t.Errorf("Recommend.RecommendationCount = %d, want 6", cfg.Recommend.RecommendationCount)
	}
	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %s:%d, want 127.0.0.1:8888", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Reservations.URL != "http://localhost:8081" {
		t.Errorf("Reservations.URL = %q, want default", cfg.Reservations.URL)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that env vars override config file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := isolateEnv(t)

	path := writeConfigFile(t, dir, `
reservations:
  url: "http://reservations.file:8081"
server:
  port: 8888
`)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("BOOKSERVICE_RESERVATIONS_URL", "http://reservations.env:8081")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Reservations.URL != "http://reservations.env:8081" {
		t.Errorf("Reservations.URL = %q, want env value", cfg.Reservations.URL)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888 from file", cfg.Server.Port)
	}
}

// TestLoadWithKoanfValidation tests that invalid values are rejected at load time
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "invalid catalog url",
			env:    map[string]string{"BOOKSERVICE_REPOSITORY_URL": "not-a-url"},
			errMsg: "catalog",
		},
		{
			name:   "cycle not divisible by shards",
			env:    map[string]string{"RECOMMEND_FULL_CYCLE_TICKS": "15", "RECOMMEND_SHARD_COUNT": "4"},
			errMsg: "must be a multiple of",
		},
		{
			name:   "invalid port",
			env:    map[string]string{"HTTP_PORT": "99999"},
			errMsg: "HTTP_PORT",
		},
		{
			name:   "invalid log level",
			env:    map[string]string{"LOG_LEVEL": "chatty"},
			errMsg: "logging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("LoadWithKoanf() error = %q, want containing %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadWithKoanfMalformedFile(t *testing.T) {
	dir := isolateEnv(t)

	path := writeConfigFile(t, dir, "server: [port: 1\n")
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("LoadWithKoanf() = nil error for malformed YAML")
	}
}
