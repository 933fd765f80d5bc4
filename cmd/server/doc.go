// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package main is the entry point for the bookrec server.

bookrec periodically pulls reservation history from the reservations service
and book details from the catalog service, maintains popularity and author
co-reading coefficients, and serves precomputed recommendations over HTTP.

# Application Architecture

	RootSupervisor ("bookrec")
	├── DataSupervisor ("data-layer")
	│   └── UpdaterService      ticks recommend.Updater
	└── APISupervisor ("api-layer")
	    └── HTTPServerService   GET /health, /api/recommendations/{user_id}, /metrics

Startup order:

 1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Tracing: OpenTelemetry OTLP exporter when TRACING_ENABLED=true
 4. Upstream clients: rate limited, retrying, behind circuit breakers
 5. Recommendation pipeline: storage, engine, updater, provider
 6. Supervisor tree with the updater and HTTP services

# Configuration

	BOOKSERVICE_REPOSITORY_URL   catalog service base URL
	BOOKSERVICE_RESERVATIONS_URL reservations service base URL
	RECOMMENDATION_COUNT         books per recommendation list (default 4)
	RECOMMEND_TICK_INTERVAL      time between updater ticks (default 10s)
	HTTP_PORT                    listen port (default 8080)

See the config package for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT and the updater stops
between ticks.
*/
package main
