// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Updater Metrics
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_tick_duration_seconds",
			Help:    "Duration of updater ticks in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ticks_total",
			Help: "Total number of updater ticks",
		},
		[]string{"result"}, // "success", "error", "canceled"
	)

	TickLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_tick_last_success_timestamp",
			Help: "Unix timestamp of the last successful tick",
		},
	)

	TickUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_tick_users",
			Help: "Number of users processed by the last tick",
		},
		[]string{"kind"}, // "total", "new"
	)

	TickBooks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_tick_books",
			Help: "Number of book details requested by the last tick",
		},
		[]string{"kind"}, // "requested", "missing"
	)

	MissingBooksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_missing_books_total",
			Help: "Total number of referenced books the catalog did not know",
		},
	)

	UpdaterRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_updater_running",
			Help: "Whether the updater loop is running (1) or stopped (0)",
		},
	)

	// Coefficient Storage Metrics
	StorageSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_storage_entries",
			Help: "Number of entries in the coefficient indices",
		},
		[]string{"index"}, // "books", "authors", "author_pairs"
	)

	// Recommendation Cache Metrics
	CachedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_cached_users",
			Help: "Number of users with personalized recommendations",
		},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_lookups_total",
			Help: "Total number of recommendation lookups",
		},
		[]string{"result"}, // "personalized", "default"
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests to upstream services",
		},
		[]string{"service", "operation", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"service", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordTick records the outcome of one updater tick.
func RecordTick(duration time.Duration, err error) {
	TickDuration.Observe(duration.Seconds())
	switch {
	case err == nil:
		TicksTotal.WithLabelValues("success").Inc()
		TickLastSuccess.Set(float64(time.Now().Unix()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		TicksTotal.WithLabelValues("canceled").Inc()
	default:
		TicksTotal.WithLabelValues("error").Inc()
	}
}

// RecordTickWorkload records the size of the last successful tick.
func RecordTickWorkload(users, newUsers, books, missingBooks int) {
	TickUsers.WithLabelValues("total").Set(float64(users))
	TickUsers.WithLabelValues("new").Set(float64(newUsers))
	TickBooks.WithLabelValues("requested").Set(float64(books))
	TickBooks.WithLabelValues("missing").Set(float64(missingBooks))
	MissingBooksTotal.Add(float64(missingBooks))
}

// RecordStorageSize records the sizes of the coefficient indices.
func RecordStorageSize(books, authors, authorPairs int) {
	StorageSize.WithLabelValues("books").Set(float64(books))
	StorageSize.WithLabelValues("authors").Set(float64(authors))
	StorageSize.WithLabelValues("author_pairs").Set(float64(authorPairs))
}

// RecordCacheSize records the number of users with a cached entry.
func RecordCacheSize(users int) {
	CachedUsers.Set(float64(users))
}

// RecordRecommendationLookup records a lookup served from the cache or the default.
func RecordRecommendationLookup(personalized bool) {
	if personalized {
		LookupsTotal.WithLabelValues("personalized").Inc()
		return
	}
	LookupsTotal.WithLabelValues("default").Inc()
}

// SetUpdaterRunning records whether the updater loop is active.
func SetUpdaterRunning(running bool) {
	if running {
		UpdaterRunning.Set(1)
		return
	}
	UpdaterRunning.Set(0)
}

// RecordUpstreamRequest records a request to an upstream service.
// statusCode is 0 when no response was received.
func RecordUpstreamRequest(service, operation string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	UpstreamRequestsTotal.WithLabelValues(service, operation, code).Inc()
	UpstreamRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
