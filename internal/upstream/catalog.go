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

// CatalogClient reads the Book Catalog service.
type CatalogClient struct {
	client *Client
}

// NewCatalogClient creates a catalog client for cfg.URL.
func NewCatalogClient(cfg *config.UpstreamConfig) *CatalogClient {
	return &CatalogClient{client: NewClient("catalog", cfg)}
}

// ListBooks returns every book id and title (GET /api/books).
func (c *CatalogClient) ListBooks(ctx context.Context) ([]models.BookTitleAndID, error) {
	var books []models.BookTitleAndID
	if _, err := c.client.getJSON(ctx, "list_books", "/api/books", &books, false); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook returns the details of one book (GET /api/book/{id}).
// A book the catalog does not know returns nil and no error.
func (c *CatalogClient) GetBook(ctx context.Context, id models.BookID) (*models.BookDetails, error) {
	var details models.BookDetails
	found, err := c.client.getJSON(ctx, "get_book", fmt.Sprintf("/api/book/%d", id), &details, true)
	if err != nil || !found {
		return nil, err
	}
	return &details, nil
}
