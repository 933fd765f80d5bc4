// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/models"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func testConfig(catalogURL, reservationsURL string) *config.Config {
	upstreamCfg := func(url string) config.UpstreamConfig {
		return config.UpstreamConfig{
			URL:            url,
			Timeout:        5 * time.Second,
			RateLimit:      1000,
			RateBurst:      100,
			RetryBaseDelay: time.Millisecond,
		}
	}
	return &config.Config{
		Catalog:      upstreamCfg(catalogURL),
		Reservations: upstreamCfg(reservationsURL),
		Recommend: config.RecommendConfig{
			RecommendationCount: 4,
			TickInterval:        time.Second,
			FullCycleTicks:      10,
			ShardCount:          10,
			FetchConcurrency:    2,
		},
	}
}

// TestPipeline_EndToEnd runs one tick against fake upstream services and
// reads the result back through the provider.
func TestPipeline_EndToEnd(t *testing.T) {
	catalogMux := http.NewServeMux()
	catalogMux.HandleFunc("GET /api/books", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []map[string]interface{}{
			{"book_id": 1, "title": "A"}, {"book_id": 2, "title": "B"}, {"book_id": 3, "title": "C"},
		})
	})
	catalogMux.HandleFunc("GET /api/book/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"title": "T" + r.PathValue("id"), "authors": []string{"X"}})
	})
	catalog := httptest.NewServer(catalogMux)
	defer catalog.Close()

	reservationsMux := http.NewServeMux()
	reservationsMux.HandleFunc("GET /api/users", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []int{1, 2})
	})
	reservationsMux.HandleFunc("GET /api/user/{id}/reservations", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []int{})
	})
	reservationsMux.HandleFunc("GET /api/user/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			writeJSON(t, w, []map[string]interface{}{{"book_id": 1, "unreserved_at": 10}, {"book_id": 2, "unreserved_at": 20}})
			return
		}
		writeJSON(t, w, []map[string]interface{}{{"book_id": 2, "unreserved_at": 5}})
	})
	reservations := httptest.NewServer(reservationsMux)
	defer reservations.Close()

	p, err := newPipeline(testConfig(catalog.URL, reservations.URL))
	if err != nil {
		t.Fatalf("newPipeline() error = %v", err)
	}

	if _, err := p.updater.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	// Book 3 was never returned and so is not ranked.
	got := p.provider.GetRecommendationsForUser(2)
	if want := []models.BookID{1}; !slices.Equal(got.MostPopular, want) {
		t.Errorf("MostPopular = %v, want %v", got.MostPopular, want)
	}
	if def := p.provider.GetRecommendationsForUser(99); !slices.Equal(def.MostPopular, []models.BookID{2, 1}) {
		t.Errorf("default MostPopular = %v, want [2 1]", def.MostPopular)
	}
	if stats := p.provider.Stats(); stats.CachedUsers != 2 {
		t.Errorf("CachedUsers = %d, want 2", stats.CachedUsers)
	}
}
