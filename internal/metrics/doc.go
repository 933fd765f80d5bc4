// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Updater Metrics:
  - recommend_tick_duration_seconds: Tick duration (histogram)
  - recommend_ticks_total: Ticks by result (counter)
    Labels: result (success, error, canceled)
  - recommend_tick_last_success_timestamp: Unix time of the last good tick (gauge)
  - recommend_tick_users: Working set of the last tick (gauge)
    Labels: kind (total, new)
  - recommend_tick_books: Book details requested by the last tick (gauge)
    Labels: kind (requested, missing)
  - recommend_missing_books_total: Referenced books unknown to the catalog (counter)
  - recommend_updater_running: 1 while the updater loop runs (gauge)

Storage and Cache Metrics:
  - recommend_storage_entries: Coefficient index sizes (gauge)
    Labels: index (books, authors, author_pairs)
  - recommend_cached_users: Users with personalized recommendations (gauge)
  - recommend_lookups_total: Lookups by result (counter)
    Labels: result (personalized, default)

Upstream Metrics:
  - upstream_requests_total: Requests to the catalog and reservations services (counter)
    Labels: service, operation, status_code
  - upstream_request_duration_seconds: Upstream latency (histogram)
    Labels: service, operation

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Current failure streak (gauge)
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

API Metrics:
  - api_requests_total: API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: API latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

# Cardinality Management

Endpoint labels use chi route patterns (/api/recommendations/{user_id}),
never raw paths. User and book ids are never used as label values.

# Thread Safety

All recording functions are safe for concurrent use. The Prometheus client
library handles synchronization internally.
*/
package metrics
