// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package upstream

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// breaker wraps upstream calls with the circuit breaker pattern so an
// unavailable service fails fast instead of stalling every tick.
type breaker struct {
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// newBreaker creates a circuit breaker that opens when at least
// cfg.MinRequests requests were seen and the failure ratio reaches
// cfg.FailureRatio.
func newBreaker(name string, cfg config.CircuitBreakerConfig) *breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	logger := logging.WithComponent("circuit_breaker")

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio

			if shouldTrip {
				logger.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening circuit")
			}

			return shouldTrip
		},

		// Canceled calls say nothing about the health of the service.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &breaker{cb: cb, name: name}
}

// execute runs fn under circuit breaker protection.
func (b *breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", b.name, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// State returns the current breaker state.
func (b *breaker) State() gobreaker.State {
	return b.cb.State()
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreakerCatalog wraps CatalogClient with a circuit breaker.
type CircuitBreakerCatalog struct {
	client  *CatalogClient
	breaker *breaker
}

// NewCircuitBreakerCatalog creates a catalog client protected by a circuit breaker.
func NewCircuitBreakerCatalog(cfg *config.UpstreamConfig) *CircuitBreakerCatalog {
	return &CircuitBreakerCatalog{
		client:  NewCatalogClient(cfg),
		breaker: newBreaker("catalog-api", cfg.CircuitBreaker),
	}
}

// ListBooks lists the catalog with circuit breaker protection
func (c *CircuitBreakerCatalog) ListBooks(ctx context.Context) ([]models.BookTitleAndID, error) {
	return castResult[[]models.BookTitleAndID](c.breaker.execute(func() (interface{}, error) {
		return c.client.ListBooks(ctx)
	}))
}

// GetBook retrieves book details with circuit breaker protection
func (c *CircuitBreakerCatalog) GetBook(ctx context.Context, id models.BookID) (*models.BookDetails, error) {
	return castResult[*models.BookDetails](c.breaker.execute(func() (interface{}, error) {
		return c.client.GetBook(ctx, id)
	}))
}

// CircuitBreakerReservations wraps ReservationsClient with a circuit breaker.
type CircuitBreakerReservations struct {
	client  *ReservationsClient
	breaker *breaker
}

// NewCircuitBreakerReservations creates a reservations client protected by a circuit breaker.
func NewCircuitBreakerReservations(cfg *config.UpstreamConfig) *CircuitBreakerReservations {
	return &CircuitBreakerReservations{
		client:  NewReservationsClient(cfg),
		breaker: newBreaker("reservations-api", cfg.CircuitBreaker),
	}
}

// ListUsers lists user ids with circuit breaker protection
func (c *CircuitBreakerReservations) ListUsers(ctx context.Context) ([]models.UserID, error) {
	return castResult[[]models.UserID](c.breaker.execute(func() (interface{}, error) {
		return c.client.ListUsers(ctx)
	}))
}

// ListReservations lists active reservations with circuit breaker protection
func (c *CircuitBreakerReservations) ListReservations(ctx context.Context, id models.UserID) ([]models.BookID, error) {
	return castResult[[]models.BookID](c.breaker.execute(func() (interface{}, error) {
		return c.client.ListReservations(ctx, id)
	}))
}

// History retrieves reservation history with circuit breaker protection
func (c *CircuitBreakerReservations) History(ctx context.Context, id models.UserID) ([]models.ReservationHistoryRecord, error) {
	return castResult[[]models.ReservationHistoryRecord](c.breaker.execute(func() (interface{}, error) {
		return c.client.History(ctx, id)
	}))
}

// NewCatalogSource returns the catalog client selected by cfg: wrapped in a
// circuit breaker when enabled, plain otherwise.
func NewCatalogSource(cfg *config.UpstreamConfig) recommend.CatalogSource {
	if cfg.CircuitBreaker.Enabled {
		return NewCircuitBreakerCatalog(cfg)
	}
	return NewCatalogClient(cfg)
}

// NewReservationSource returns the reservations client selected by cfg.
func NewReservationSource(cfg *config.UpstreamConfig) recommend.ReservationSource {
	if cfg.CircuitBreaker.Enabled {
		return NewCircuitBreakerReservations(cfg)
	}
	return NewReservationsClient(cfg)
}
