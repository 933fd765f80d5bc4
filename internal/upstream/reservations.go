// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package upstream

import (
	"context"
	"fmt"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/models"
)

// ReservationsClient reads the Reservations service.
type ReservationsClient struct {
	client *Client
}

// NewReservationsClient creates a reservations client for cfg.URL.
func NewReservationsClient(cfg *config.UpstreamConfig) *ReservationsClient {
	return &ReservationsClient{client: NewClient("reservations", cfg)}
}

// ListUsers returns the ids of all users (GET /api/users).
func (c *ReservationsClient) ListUsers(ctx context.Context) ([]models.UserID, error) {
	var users []models.UserID
	if _, err := c.client.getJSON(ctx, "list_users", "/api/users", &users, false); err != nil {
		return nil, err
	}
	return users, nil
}

// ListReservations returns the books a user currently holds
// (GET /api/user/{id}/reservations).
func (c *ReservationsClient) ListReservations(ctx context.Context, id models.UserID) ([]models.BookID, error) {
	var books []models.BookID
	path := fmt.Sprintf("/api/user/%d/reservations", id)
	if _, err := c.client.getJSON(ctx, "list_reservations", path, &books, false); err != nil {
		return nil, err
	}
	return books, nil
}

// History returns the closed reservations of a user (GET /api/user/{id}/history).
func (c *ReservationsClient) History(ctx context.Context, id models.UserID) ([]models.ReservationHistoryRecord, error) {
	var records []models.ReservationHistoryRecord
	path := fmt.Sprintf("/api/user/%d/history", id)
	if _, err := c.client.getJSON(ctx, "history", path, &records, false); err != nil {
		return nil, err
	}
	return records, nil
}
