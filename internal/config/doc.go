// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package config provides centralized configuration management for bookrec.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:
  - Built-in defaults
  - An optional YAML file (CONFIG_PATH, ./config.yaml or /etc/bookrec/config.yaml)
  - Environment variables

# Configuration Structure

  - Catalog, Reservations: upstream service URL, timeouts, retries, rate limit, circuit breaker
  - Recommend: updater tick interval, full cycle length, shard count, list length
  - Server: HTTP listener (default 0.0.0.0:8080) and timeouts
  - Security: API rate limiting and CORS origins
  - Logging: zerolog level and format
  - Tracing: OpenTelemetry OTLP/HTTP exporter

# Environment Variables

Upstream services:
  - BOOKSERVICE_REPOSITORY_URL or CATALOG_URL: catalog base URL (default: http://localhost:8080)
  - BOOKSERVICE_RESERVATIONS_URL or RESERVATIONS_URL: reservations base URL (default: http://localhost:8081)
  - CATALOG_TIMEOUT, RESERVATIONS_TIMEOUT: per-request timeout (default: 10s)
  - CATALOG_RATE_LIMIT, RESERVATIONS_RATE_LIMIT: requests per second, 0 for unlimited
  - CATALOG_MAX_RETRIES, RESERVATIONS_MAX_RETRIES: retries on HTTP 429 (default: 3)
  - CATALOG_CIRCUIT_BREAKER_ENABLED, RESERVATIONS_CIRCUIT_BREAKER_ENABLED (default: true)

Recommendations:
  - RECOMMENDATION_COUNT: books per list (default: 4)
  - RECOMMEND_TICK_INTERVAL: time between ticks (default: 10s)
  - RECOMMEND_FULL_CYCLE_TICKS: ticks per full refresh cycle (default: 200)
  - RECOMMEND_SHARD_COUNT: user shards per cycle (default: 10)
  - RECOMMEND_FETCH_CONCURRENCY: concurrent upstream requests per tick (default: 1)
  - RECOMMEND_ABORT_ON_ERROR: stop updating after a failed tick (default: true)

HTTP server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0, 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated list (default: *)

Observability:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - TRACING_ENABLED, TRACING_ENDPOINT, TRACING_INSECURE, TRACING_SAMPLE_RATE

# Validation

Sections are validated with go-playground/validator struct tags through the
validation package. Cross-field rules are checked afterwards, notably that
RECOMMEND_FULL_CYCLE_TICKS is a multiple of RECOMMEND_SHARD_COUNT.

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.ToLoggingConfig())
*/
package config
