// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package upstream provides HTTP clients for the Book Catalog and Reservations
services the recommendation updater reads from.

Endpoints:

	Catalog:       GET /api/books
	               GET /api/book/{id}            (404 means the book is unknown)
	Reservations:  GET /api/users
	               GET /api/user/{id}/reservations
	               GET /api/user/{id}/history

Resilience:
  - Circuit breaker (sony/gobreaker) per service, state exported to Prometheus
  - Optional outbound rate limit (golang.org/x/time/rate)
  - HTTP 429 retried with exponential backoff, honoring Retry-After
  - Error bodies read up to 64KB for diagnostics

Every call runs in an OpenTelemetry client span and the transport is
instrumented with otelhttp, so upstream requests join the updater tick trace.

Non-success statuses are reported as ErrUnexpectedStatus:

	details, err := catalog.GetBook(ctx, id)
	if errors.Is(err, upstream.ErrUnexpectedStatus) {
	    // the catalog answered but refused the request
	}
*/
package upstream
