// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/models"
)

// ErrInvalidBookID is returned by UpdateStorage when the input references a negative book id.
var ErrInvalidBookID = errors.New("invalid book id")

// CoefficientsStorage owns the derived indices recommendations are computed from.
//
// Indices are built only from closed reservations. Each ingest works on a
// private copy of the current state which is published as a whole at the
// end, so a rejected call leaves the storage untouched and a published
// StorageSnapshot is never mutated afterwards.
type CoefficientsStorage struct {
	mu      sync.Mutex
	current *StorageSnapshot
	logger  zerolog.Logger
}

// StorageSnapshot is an immutable view of the coefficients at one point in time.
type StorageSnapshot struct {
	popularityScore           map[models.BookID]int64
	authorToBooks             map[string][]models.BookID
	authorToBooksByPopularity map[string][]models.BookID
	booksByPopularity         []models.BookID
	authorMatchScore          map[AuthorPair]int64
	bookIDToAuthors           map[models.BookID][]string
	lastProcessed             map[models.UserID]int64
}

// NewCoefficientsStorage creates an empty storage.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCoefficientsStorage(logger zerolog.Logger) *CoefficientsStorage {
	return &CoefficientsStorage{
		current: newStorageSnapshot(),
		logger:  logger.With().Str("component", "coefficients").Logger(),
	}
}

func newStorageSnapshot() *StorageSnapshot {
	return &StorageSnapshot{
		popularityScore:           make(map[models.BookID]int64),
		authorToBooks:             make(map[string][]models.BookID),
		authorToBooksByPopularity: make(map[string][]models.BookID),
		authorMatchScore:          make(map[AuthorPair]int64),
		bookIDToAuthors:           make(map[models.BookID][]string),
		lastProcessed:             make(map[models.UserID]int64),
	}
}

// clone copies every mutable index. Rankings are rebuilt after each ingest
// and are therefore not copied.
func (s *StorageSnapshot) clone() *StorageSnapshot {
	next := &StorageSnapshot{
		popularityScore:  maps.Clone(s.popularityScore),
		authorToBooks:    make(map[string][]models.BookID, len(s.authorToBooks)),
		authorMatchScore: maps.Clone(s.authorMatchScore),
		bookIDToAuthors:  maps.Clone(s.bookIDToAuthors),
		lastProcessed:    maps.Clone(s.lastProcessed),
	}
	for author, books := range s.authorToBooks {
		next.authorToBooks[author] = slices.Clone(books)
	}
	return next
}

// UpdateStorage ingests the history of a batch of users.
//
// Records at or below a user's watermark are skipped. The remaining records,
// deduplicated by book id per user, increment popularity. Books whose details
// are part of this call are indexed under their authors, and every pair of
// distinct authors touched by one user increments the pair's co-occurrence.
// The watermark then advances to the newest record of the full input.
func (c *CoefficientsStorage) UpdateStorage(
	userToHistory map[models.UserID][]models.ReservationHistoryRecord,
	bookDetails map[models.BookID]models.BookDetails,
) error {
	if err := validateIngest(userToHistory, bookDetails); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.clone()

	for id, details := range bookDetails {
		next.bookIDToAuthors[id] = slices.Clone(details.Authors)
	}

	// Users are ingested in id order so first-seen author order is reproducible.
	for _, userID := range slices.Sorted(maps.Keys(userToHistory)) {
		c.ingestUser(next, userID, userToHistory[userID], bookDetails)
	}

	next.rank()
	c.current = next
	return nil
}

// ingestUser applies one user's history to next.
func (c *CoefficientsStorage) ingestUser(
	next *StorageSnapshot,
	userID models.UserID,
	records []models.ReservationHistoryRecord,
	bookDetails map[models.BookID]models.BookDetails,
) {
	watermark, hasWatermark := next.lastProcessed[userID]

	counted := make(map[models.BookID]struct{})
	touchedAuthors := make(map[string]struct{})

	for _, record := range records {
		if hasWatermark && record.UnreservedAt <= watermark {
			continue
		}
		if _, dup := counted[record.BookID]; dup {
			continue
		}
		counted[record.BookID] = struct{}{}

		next.popularityScore[record.BookID]++

		details, ok := bookDetails[record.BookID]
		if !ok {
			c.logger.Warn().
				Int32("book_id", int32(record.BookID)).
				Int32("user_id", int32(userID)).
				Msg("could not find details for book, skipping author indexing")
			continue
		}
		for _, author := range details.Authors {
			touchedAuthors[author] = struct{}{}
			if !slices.Contains(next.authorToBooks[author], record.BookID) {
				next.authorToBooks[author] = append(next.authorToBooks[author], record.BookID)
			}
		}
	}

	authors := slices.Sorted(maps.Keys(touchedAuthors))
	for i := 0; i < len(authors); i++ {
		for j := i + 1; j < len(authors); j++ {
			next.authorMatchScore[AuthorPair{First: authors[i], Second: authors[j]}]++
		}
	}

	if len(records) == 0 {
		return
	}
	newest := records[0].UnreservedAt
	for _, record := range records[1:] {
		newest = max(newest, record.UnreservedAt)
	}
	if !hasWatermark || newest > watermark {
		next.lastProcessed[userID] = newest
	}
}

// rank rebuilds the per-author and global popularity rankings.
func (s *StorageSnapshot) rank() {
	s.authorToBooksByPopularity = make(map[string][]models.BookID, len(s.authorToBooks))
	for author, books := range s.authorToBooks {
		s.authorToBooksByPopularity[author] = sortByPopularity(books, s.popularityScore)
	}

	s.booksByPopularity = sortByPopularity(slices.Collect(maps.Keys(s.popularityScore)), s.popularityScore)
}

// validateIngest rejects a batch before any state is touched.
func validateIngest(
	userToHistory map[models.UserID][]models.ReservationHistoryRecord,
	bookDetails map[models.BookID]models.BookDetails,
) error {
	for id := range bookDetails {
		if id < 0 {
			return fmt.Errorf("%w: book details for %d", ErrInvalidBookID, id)
		}
	}
	for userID, records := range userToHistory {
		for _, record := range records {
			if record.BookID < 0 {
				return fmt.Errorf("%w: history of user %d references book %d", ErrInvalidBookID, userID, record.BookID)
			}
		}
	}
	return nil
}

// Snapshot returns the most recently published state.
func (c *CoefficientsStorage) Snapshot() *StorageSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// PopularityScore returns how many times a book was returned. Unknown books score 0.
func (s *StorageSnapshot) PopularityScore(id models.BookID) int64 {
	return s.popularityScore[id]
}

// AuthorMatchScore returns the co-occurrence count of two authors in either order.
func (s *StorageSnapshot) AuthorMatchScore(a, b string) int64 {
	return s.authorMatchScore[NewAuthorPair(a, b)]
}

// BooksByPopularity returns every counted book, most popular first.
// The returned slice must not be modified.
func (s *StorageSnapshot) BooksByPopularity() []models.BookID {
	return s.booksByPopularity
}

// AuthorBooks returns the books indexed under author in first-seen order.
// The returned slice must not be modified.
func (s *StorageSnapshot) AuthorBooks(author string) []models.BookID {
	return s.authorToBooks[author]
}

// AuthorBooksByPopularity returns the books of author, most popular first.
// The returned slice must not be modified.
func (s *StorageSnapshot) AuthorBooksByPopularity(author string) []models.BookID {
	return s.authorToBooksByPopularity[author]
}

// Authors returns every indexed author in ascending order.
func (s *StorageSnapshot) Authors() []string {
	return slices.Sorted(maps.Keys(s.authorToBooksByPopularity))
}

// AuthorsOf returns the known authors of a book.
// The returned slice must not be modified.
func (s *StorageSnapshot) AuthorsOf(id models.BookID) []string {
	return s.bookIDToAuthors[id]
}

// Watermark returns the newest counted timestamp of a user and whether one exists.
func (s *StorageSnapshot) Watermark(userID models.UserID) (int64, bool) {
	ts, ok := s.lastProcessed[userID]
	return ts, ok
}

// Counts reports index sizes for metrics.
func (s *StorageSnapshot) Counts() (books, authors, authorPairs int) {
	return len(s.popularityScore), len(s.authorToBooks), len(s.authorMatchScore)
}
