// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/models"
)

// TestCircuitBreaker_OpensAfterFailures verifies the circuit opens once the
// failure ratio is reached with enough requests.
func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	b := newBreaker("test-opens", config.CircuitBreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	})

	if b.State() != gobreaker.StateClosed {
		t.Fatalf("initial state = %v, want closed", b.State())
	}

	// 7 failures then 3 successes: the ratio is only checked on failure,
	// and the first 7 failures come before the request minimum.
	for i := 0; i < 10; i++ {
		_, _ = b.execute(func() (interface{}, error) {
			if i < 7 {
				return nil, errors.New("simulated failure")
			}
			return "ok", nil
		})
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("state after 10 requests = %v, want closed", b.State())
	}

	_, _ = b.execute(func() (interface{}, error) {
		return nil, errors.New("final failure")
	})
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-opens")); got != 2 {
		t.Errorf("state gauge = %v, want 2 (open)", got)
	}

	called := false
	_, err := b.execute(func() (interface{}, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("execute() on open circuit error = %v, want ErrOpenState", err)
	}
	if called {
		t.Error("open circuit ran the request")
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-opens", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestCircuitBreaker_CanceledCallsDoNotTrip(t *testing.T) {
	t.Parallel()

	b := newBreaker("test-canceled", config.CircuitBreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  1,
		FailureRatio: 0.1,
	})

	for i := 0; i < 5; i++ {
		_, err := b.execute(func() (interface{}, error) {
			return nil, context.Canceled
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("execute() error = %v, want context.Canceled", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestCastResult(t *testing.T) {
	t.Parallel()

	ids, err := castResult[[]models.BookID]([]models.BookID{1, 2}, nil)
	if err != nil || len(ids) != 2 {
		t.Errorf("castResult(slice) = %v, %v", ids, err)
	}

	var none *models.BookDetails
	details, err := castResult[*models.BookDetails](none, nil)
	if err != nil || details != nil {
		t.Errorf("castResult(typed nil) = %v, %v, want nil, nil", details, err)
	}

	if _, err := castResult[[]models.UserID]("wrong", nil); err == nil {
		t.Error("castResult(wrong type) error = nil")
	}

	sentinel := errors.New("boom")
	if _, err := castResult[[]models.UserID](nil, sentinel); !errors.Is(err, sentinel) {
		t.Errorf("castResult(err) = %v, want sentinel", err)
	}
}

func TestCircuitBreakerReservations_FailsFastWhenOpen(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewCircuitBreakerReservations(testUpstreamConfig(srv.URL))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.ListUsers(ctx); !errors.Is(err, ErrUnexpectedStatus) {
			t.Fatalf("ListUsers() #%d error = %v, want ErrUnexpectedStatus", i, err)
		}
	}

	_, err := client.History(ctx, 1)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("History() error = %v, want ErrOpenState", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestCircuitBreakerCatalog_PassesThrough(t *testing.T) {
	t.Parallel()
	srv := newCatalogServer(t)

	client := NewCircuitBreakerCatalog(testUpstreamConfig(srv.URL))
	ctx := context.Background()

	books, err := client.ListBooks(ctx)
	if err != nil || len(books) != 2 {
		t.Fatalf("ListBooks() = %v, %v", books, err)
	}

	details, err := client.GetBook(ctx, 2)
	if err != nil || details == nil || details.Authors[0] != "Jane Austen" {
		t.Fatalf("GetBook(2) = %+v, %v", details, err)
	}

	details, err = client.GetBook(ctx, 404)
	if err != nil || details != nil {
		t.Errorf("GetBook(404) = %+v, %v, want nil, nil", details, err)
	}
}

func TestNewSources(t *testing.T) {
	t.Parallel()

	cfg := testUpstreamConfig("http://localhost:8080")
	if _, ok := NewCatalogSource(cfg).(*CircuitBreakerCatalog); !ok {
		t.Error("NewCatalogSource() with breaker enabled did not wrap the client")
	}
	if _, ok := NewReservationSource(cfg).(*CircuitBreakerReservations); !ok {
		t.Error("NewReservationSource() with breaker enabled did not wrap the client")
	}

	cfg.CircuitBreaker.Enabled = false
	if _, ok := NewCatalogSource(cfg).(*CatalogClient); !ok {
		t.Error("NewCatalogSource() with breaker disabled wrapped the client")
	}
	if _, ok := NewReservationSource(cfg).(*ReservationsClient); !ok {
		t.Error("NewReservationSource() with breaker disabled wrapped the client")
	}
}
