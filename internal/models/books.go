// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package models

// BookID identifies a book in the catalog service.
type BookID int32

// UserID identifies a user in the reservations service.
type UserID int32

// BookTitleAndID is one entry of the catalog listing.
type BookTitleAndID struct {
	BookID BookID `json:"book_id"`
	Title  string `json:"title"`
}

// BookDetails is the catalog metadata of a single book.
// Authors drive the co-occurrence scoring; tags are carried but unused.
type BookDetails struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
