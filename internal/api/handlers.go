// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/validation"
)

// RecommendationReader is the read side of the recommendation engine.
type RecommendationReader interface {
	GetRecommendationsForUser(userID models.UserID) recommend.Recommendations
	Stats() recommend.EngineStats
}

// Handler serves the HTTP endpoints.
type Handler struct {
	recommendations RecommendationReader
	version         string
	startTime       time.Time
}

// NewHandler creates a handler reading from the given recommendations.
func NewHandler(recommendations RecommendationReader, version string) *Handler {
	return &Handler{
		recommendations: recommendations,
		version:         version,
		startTime:       time.Now(),
	}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	CachedUsers   int       `json:"cached_users"`
	Updates       uint64    `json:"updates"`
	LastUpdated   time.Time `json:"last_updated,omitempty"`
}

// Health reports liveness. It answers 200 even before the first tick: the
// service serves default recommendations until then.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.recommendations.Stats()
	writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		CachedUsers:   stats.CachedUsers,
		Updates:       stats.Updates,
		LastUpdated:   stats.LastUpdated,
	})
}

// RecommendationsRequest holds the validated path parameters of a lookup.
type RecommendationsRequest struct {
	UserID int64 `json:"user_id" validate:"gte=0,lte=2147483647"`
}

// Recommendations returns the materialized recommendations of one user.
// Unknown users receive the default recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be an integer", map[string]interface{}{
			"field": "user_id",
			"value": raw,
		})
		return
	}

	req := RecommendationsRequest{UserID: id}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	writeJSON(w, r, http.StatusOK, h.recommendations.GetRecommendationsForUser(models.UserID(req.UserID)))
}

// NotFound answers unknown routes with the error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "resource not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
}
