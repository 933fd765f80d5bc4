// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/bookrec/internal/models"
)

// Recommendations is the materialized output for one user.
// Order within each list is significant: best candidate first.
type Recommendations struct {
	// MostPopular holds the most returned books the user has not seen.
	MostPopular []models.BookID `json:"most_popular"`

	// AuthorMatch holds one unseen book per author the user reads most.
	AuthorMatch []models.BookID `json:"author_match"`

	// NewAuthorMatch holds books by authors the user has never read.
	NewAuthorMatch []models.BookID `json:"new_author_match"`
}

// Clone returns a deep copy. Empty lists are returned as empty, non-nil
// slices so they encode as [] rather than null.
func (r Recommendations) Clone() Recommendations {
	return Recommendations{
		MostPopular:    cloneIDs(r.MostPopular),
		AuthorMatch:    cloneIDs(r.AuthorMatch),
		NewAuthorMatch: cloneIDs(r.NewAuthorMatch),
	}
}

func cloneIDs(ids []models.BookID) []models.BookID {
	out := make([]models.BookID, len(ids))
	copy(out, ids)
	return out
}

// CatalogSource is the narrow read contract of the Book Catalog service.
type CatalogSource interface {
	// ListBooks returns every book id and title in the catalog.
	ListBooks(ctx context.Context) ([]models.BookTitleAndID, error)

	// GetBook returns the details of a book, or nil when the book does not exist.
	GetBook(ctx context.Context, id models.BookID) (*models.BookDetails, error)
}

// ReservationSource is the narrow read contract of the Reservations service.
type ReservationSource interface {
	// ListUsers returns the ids of all users.
	ListUsers(ctx context.Context) ([]models.UserID, error)

	// ListReservations returns the books a user currently holds.
	ListReservations(ctx context.Context, id models.UserID) ([]models.BookID, error)

	// History returns the closed reservations of a user.
	History(ctx context.Context, id models.UserID) ([]models.ReservationHistoryRecord, error)
}

// EngineStats describes the state of the recommendation cache.
type EngineStats struct {
	// CachedUsers is the number of users with a personalized entry.
	CachedUsers int `json:"cached_users"`

	// Updates is the number of completed UpdateRecommendationsForUsers calls.
	Updates uint64 `json:"updates"`

	// LastUpdated is when the last batch was published. Zero before the first.
	LastUpdated time.Time `json:"last_updated"`
}

// TickResult summarizes one updater tick.
type TickResult struct {
	// IntervalNo is the tick number within the full cycle that was processed.
	IntervalNo int `json:"interval_no"`

	// ShardIndex is the shard refreshed on this tick, or -1 when none was.
	ShardIndex int `json:"shard_index"`

	// NewUsers is the number of never-seen users in the working set.
	NewUsers int `json:"new_users"`

	// Users is the size of the working set.
	Users int `json:"users"`

	// Books is the number of books whose details were requested.
	Books int `json:"books"`

	// MissingBooks is the number of requested books the catalog did not know.
	MissingBooks int `json:"missing_books"`

	// FullCatalog reports whether the whole catalog was refreshed.
	FullCatalog bool `json:"full_catalog"`

	// Duration is the wall-clock time of the tick.
	Duration time.Duration `json:"duration"`
}
