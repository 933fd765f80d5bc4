// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package api serves the recommendation HTTP API.

Endpoints:

	GET /health                            liveness and engine statistics
	GET /api/recommendations/{user_id}     materialized recommendations for a user
	GET /metrics                           Prometheus metrics

Recommendation lookups never touch upstream services; they read the
snapshot published by the updater through a RecommendationReader.
Unknown users receive the default recommendations. Malformed or negative
user ids are rejected with 400 and the APIResponse error envelope.

Routing uses Chi with go-chi/cors, go-chi/httprate rate limiting and the
middleware package for request ids, access logs and Prometheus metrics.
The whole router is wrapped in an otelhttp handler.
*/
package api
