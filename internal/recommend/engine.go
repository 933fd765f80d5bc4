// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/models"
)

// ErrNilSnapshot is returned when the engine is asked to update from no storage state.
var ErrNilSnapshot = errors.New("nil storage snapshot")

// Engine computes and caches one Recommendations value per user.
type Engine struct {
	config *Config
	logger zerolog.Logger

	// mu guards the cache. The write lock is held only while a computed
	// batch is swapped in.
	mu                     sync.RWMutex
	userRecommendations    map[models.UserID]Recommendations
	defaultRecommendations Recommendations
	lastUpdated            time.Time

	updates atomic.Uint64
	now     func() time.Time
}

// NewEngine creates an empty engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:                 cfg.Clone(),
		logger:                 logger.With().Str("component", "recommend").Logger(),
		userRecommendations:    make(map[models.UserID]Recommendations),
		defaultRecommendations: Recommendations{}.Clone(),
		now:                    time.Now,
	}, nil
}

// UpdateRecommendationsForUsers recomputes the entries of every user present
// in either map and refreshes the default recommendations. Users outside the
// maps keep their cached entry.
func (e *Engine) UpdateRecommendationsForUsers(
	snapshot *StorageSnapshot,
	userToReservations map[models.UserID][]models.BookID,
	userToHistory map[models.UserID][]models.ReservationHistoryRecord,
) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}

	limit := e.config.RecommendationCount

	users := make(map[models.UserID]struct{}, len(userToReservations))
	for id := range userToReservations {
		users[id] = struct{}{}
	}
	for id := range userToHistory {
		users[id] = struct{}{}
	}

	computed := make(map[models.UserID]Recommendations, len(users))
	for id := range users {
		computed[id] = e.recommendForUser(snapshot, userToReservations[id], userToHistory[id], limit)
	}

	defaults := Recommendations{
		MostPopular:    takeUnseen(snapshot.BooksByPopularity(), nil, limit),
		AuthorMatch:    []models.BookID{},
		NewAuthorMatch: []models.BookID{},
	}

	e.mu.Lock()
	for id, recs := range computed {
		e.userRecommendations[id] = recs
	}
	e.defaultRecommendations = defaults
	e.lastUpdated = e.now()
	e.updates.Add(1)
	cached := len(e.userRecommendations)
	e.mu.Unlock()

	e.logger.Info().
		Int("users", len(computed)).
		Int("cached_users", cached).
		Msg("updated recommendations")

	if e.logger.GetLevel() <= zerolog.DebugLevel {
		for id, recs := range computed {
			e.logger.Debug().
				Int32("user_id", int32(id)).
				Interface("recommendations", recs).
				Msg("adding recommendations for user")
		}
	}

	return nil
}

// recommendForUser builds the three lists for one user from a snapshot.
func (e *Engine) recommendForUser(
	snapshot *StorageSnapshot,
	reservations []models.BookID,
	history []models.ReservationHistoryRecord,
	limit int,
) Recommendations {
	reserved := make(map[models.BookID]struct{}, len(reservations)+len(history))
	for _, id := range reservations {
		reserved[id] = struct{}{}
	}
	for _, record := range history {
		reserved[record.BookID] = struct{}{}
	}

	authorFrequency := make(map[string]int64)
	for id := range reserved {
		for _, author := range snapshot.AuthorsOf(id) {
			authorFrequency[author]++
		}
	}

	return Recommendations{
		MostPopular:    takeUnseen(snapshot.BooksByPopularity(), reserved, limit),
		AuthorMatch:    authorMatch(snapshot, authorFrequency, reserved, limit),
		NewAuthorMatch: newAuthorMatch(snapshot, authorFrequency, reserved, limit),
	}
}

// authorMatch walks the user's authors from most to least read and takes
// each author's most popular unseen book.
func authorMatch(
	snapshot *StorageSnapshot,
	authorFrequency map[string]int64,
	reserved map[models.BookID]struct{},
	limit int,
) []models.BookID {
	out := make([]models.BookID, 0, limit)
	picked := make(map[models.BookID]struct{}, limit)

	for _, author := range rankAuthors(authorFrequency) {
		if len(out) == limit {
			break
		}
		if id, ok := firstUnseen(snapshot.AuthorBooksByPopularity(author), reserved, picked); ok {
			out = append(out, id)
			picked[id] = struct{}{}
		}
	}
	return out
}

// newAuthorMatch ranks authors the user has never read by their summed
// co-occurrence with the authors the user has read.
func newAuthorMatch(
	snapshot *StorageSnapshot,
	authorFrequency map[string]int64,
	reserved map[models.BookID]struct{},
	limit int,
) []models.BookID {
	affinity := make(map[string]int64)
	for _, candidate := range snapshot.Authors() {
		if _, read := authorFrequency[candidate]; read {
			continue
		}
		var score int64
		for readAuthor := range authorFrequency {
			score += snapshot.AuthorMatchScore(candidate, readAuthor)
		}
		affinity[candidate] = score
	}

	out := make([]models.BookID, 0, limit)
	picked := make(map[models.BookID]struct{}, limit)

	for _, author := range rankAuthors(affinity) {
		if len(out) == limit {
			break
		}
		if id, ok := firstUnseen(snapshot.AuthorBooksByPopularity(author), reserved, picked); ok {
			out = append(out, id)
			picked[id] = struct{}{}
		}
	}
	return out
}

// GetRecommendationsForUser returns the cached entry of a user, or the
// default recommendations when the user has none. It never blocks on
// upstream I/O and never fails.
func (e *Engine) GetRecommendationsForUser(userID models.UserID) Recommendations {
	recs, _ := e.Lookup(userID)
	return recs
}

// Lookup is GetRecommendationsForUser that also reports whether the result
// was a personalized entry.
func (e *Engine) Lookup(userID models.UserID) (Recommendations, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if recs, ok := e.userRecommendations[userID]; ok {
		return recs.Clone(), true
	}
	return e.defaultRecommendations.Clone(), false
}

// DefaultRecommendations returns the fallback served to users without an entry.
func (e *Engine) DefaultRecommendations() Recommendations {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultRecommendations.Clone()
}

// Stats returns cache statistics.
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EngineStats{
		CachedUsers: len(e.userRecommendations),
		Updates:     e.updates.Load(),
		LastUpdated: e.lastUpdated,
	}
}
