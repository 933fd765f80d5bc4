// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/tracing"
)

// Updater is the only writer of the storage and the engine. Each Tick
// selects a working set of users, fetches their data from upstream and
// publishes the recomputed recommendations as one batch.
type Updater struct {
	config       *Config
	storage      *CoefficientsStorage
	engine       *Engine
	catalog      CatalogSource
	reservations ReservationSource
	logger       zerolog.Logger

	// mu serializes ticks; it is never held by readers.
	mu             sync.Mutex
	intervalNo     int
	processedUsers map[models.UserID]time.Time

	now func() time.Time
}

// userData is what one tick fetched for one user.
type userData struct {
	reservations []models.BookID
	history      []models.ReservationHistoryRecord
}

// NewUpdater wires an updater to its collaborators.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewUpdater(
	cfg *Config,
	storage *CoefficientsStorage,
	engine *Engine,
	catalog CatalogSource,
	reservations ReservationSource,
	logger zerolog.Logger,
) (*Updater, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if storage == nil || engine == nil {
		return nil, fmt.Errorf("%w: storage and engine are required", ErrInvalidConfig)
	}
	if catalog == nil || reservations == nil {
		return nil, fmt.Errorf("%w: catalog and reservations sources are required", ErrInvalidConfig)
	}

	return &Updater{
		config:         cfg.Clone(),
		storage:        storage,
		engine:         engine,
		catalog:        catalog,
		reservations:   reservations,
		logger:         logger.With().Str("component", "updater").Logger(),
		processedUsers: make(map[models.UserID]time.Time),
		now:            time.Now,
	}, nil
}

// Provider returns a read handle on the engine this updater writes to.
func (u *Updater) Provider() *Provider {
	return NewProvider(u.engine)
}

// IntervalNo returns the position of the next tick within the full cycle.
func (u *Updater) IntervalNo() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.intervalNo
}

// ProcessedUsers returns how many users have been processed at least once.
func (u *Updater) ProcessedUsers() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.processedUsers)
}

// ShardOf returns the shard a user belongs to out of count shards.
func ShardOf(userID models.UserID, count int) int {
	shard := int(userID) % count
	if shard < 0 {
		shard += count
	}
	return shard
}

// shardForTick returns the shard refreshed on tick intervalNo, or -1.
func (u *Updater) shardForTick(intervalNo int) int {
	ticksPerShard := u.config.Schedule.TicksPerShard()
	if intervalNo%ticksPerShard != 0 {
		return -1
	}
	return intervalNo / ticksPerShard
}

// Tick runs one scheduling step. On error nothing is published and the
// interval number does not advance.
func (u *Updater) Tick(ctx context.Context) (TickResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := u.now()
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.FieldsFromContext(ctx, u.logger.With()).Logger()

	result := TickResult{
		IntervalNo: u.intervalNo,
		ShardIndex: u.shardForTick(u.intervalNo),
	}

	ctx, span := tracing.Tracer().Start(ctx, "recommend.tick",
		trace.WithAttributes(
			attribute.Int("tick.interval_no", result.IntervalNo),
			attribute.Int("tick.shard_index", result.ShardIndex),
		))
	defer span.End()

	logger.Info().Int("tick_number", result.IntervalNo).Msg("starting tick")

	if err := u.tick(ctx, logger, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordTick(time.Since(start), err)
		return result, err
	}

	result.Duration = u.now().Sub(start)
	metrics.RecordTick(result.Duration, nil)
	metrics.RecordTickWorkload(result.Users, result.NewUsers, result.Books, result.MissingBooks)

	stats := u.engine.Stats()
	metrics.RecordCacheSize(stats.CachedUsers)
	books, authors, pairs := u.storage.Snapshot().Counts()
	metrics.RecordStorageSize(books, authors, pairs)

	logger.Info().
		Int("tick_number", result.IntervalNo).
		Int("users", result.Users).
		Int("new_users", result.NewUsers).
		Int("books", result.Books).
		Dur("duration", result.Duration).
		Msg("tick completed")

	u.intervalNo = (u.intervalNo + 1) % u.config.Schedule.FullCycleTicks
	return result, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (u *Updater) tick(ctx context.Context, logger zerolog.Logger, result *TickResult) error {
	users, err := u.reservations.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	workingSet, listed := u.workingSet(users, result)
	if result.ShardIndex >= 0 {
		logger.Info().
			Int("shard", result.ShardIndex).
			Int("users", len(workingSet)-result.NewUsers).
			Msg("refreshing shard")
	}
	result.Users = len(workingSet)

	fetched, err := u.fetchUsers(ctx, workingSet)
	if err != nil {
		return err
	}

	bookIDs, err := u.booksToRefresh(ctx, fetched)
	if err != nil {
		return err
	}
	result.FullCatalog = u.intervalNo == 0
	result.Books = len(bookIDs)

	details, err := u.fetchBooks(ctx, bookIDs)
	if err != nil {
		return err
	}
	result.MissingBooks = len(bookIDs) - len(details)

	userToHistory := make(map[models.UserID][]models.ReservationHistoryRecord, len(fetched))
	userToReservations := make(map[models.UserID][]models.BookID, len(fetched))
	for id, data := range fetched {
		userToHistory[id] = data.history
		userToReservations[id] = data.reservations
	}

	if err := u.storage.UpdateStorage(userToHistory, details); err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	if err := u.engine.UpdateRecommendationsForUsers(u.storage.Snapshot(), userToReservations, userToHistory); err != nil {
		return fmt.Errorf("update recommendations: %w", err)
	}

	// Users that left the listing are forgotten; they count as new if they return.
	for id := range u.processedUsers {
		if _, ok := listed[id]; !ok {
			delete(u.processedUsers, id)
		}
	}
	processedAt := u.now()
	for _, id := range workingSet {
		u.processedUsers[id] = processedAt
	}
	return nil
}

// workingSet returns the users to process this tick in ascending id order:
// every never-seen user plus, on a shard tick, the known users of that shard.
// It also returns the set of listed users.
func (u *Updater) workingSet(users []models.UserID, result *TickResult) ([]models.UserID, map[models.UserID]struct{}) {
	listed := make(map[models.UserID]struct{}, len(users))
	selected := make(map[models.UserID]struct{})

	result.NewUsers = 0
	for _, id := range users {
		listed[id] = struct{}{}
		if _, known := u.processedUsers[id]; !known {
			if _, dup := selected[id]; !dup {
				result.NewUsers++
			}
			selected[id] = struct{}{}
			continue
		}
		if result.ShardIndex >= 0 && ShardOf(id, u.config.Schedule.ShardCount) == result.ShardIndex {
			selected[id] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(selected)), listed
}

// fetchUsers loads history and active reservations for every user.
func (u *Updater) fetchUsers(ctx context.Context, users []models.UserID) (map[models.UserID]userData, error) {
	results := make([]userData, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.config.Schedule.FetchConcurrency)

	for i, id := range users {
		g.Go(func() error {
			history, err := u.reservations.History(gctx, id)
			if err != nil {
				return fmt.Errorf("history of user %d: %w", id, err)
			}
			reservations, err := u.reservations.ListReservations(gctx, id)
			if err != nil {
				return fmt.Errorf("reservations of user %d: %w", id, err)
			}
			results[i] = userData{reservations: reservations, history: history}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetched := make(map[models.UserID]userData, len(users))
	for i, id := range users {
		fetched[id] = results[i]
	}
	return fetched, nil
}

// booksToRefresh returns the whole catalog on the first tick of a cycle and
// otherwise the distinct books referenced by this tick's users.
func (u *Updater) booksToRefresh(ctx context.Context, fetched map[models.UserID]userData) ([]models.BookID, error) {
	ids := make(map[models.BookID]struct{})

	if u.intervalNo == 0 {
		books, err := u.catalog.ListBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		for _, book := range books {
			ids[book.BookID] = struct{}{}
		}
		return slices.Sorted(maps.Keys(ids)), nil
	}

	for _, data := range fetched {
		for _, id := range data.reservations {
			ids[id] = struct{}{}
		}
		for _, record := range data.history {
			ids[record.BookID] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(ids)), nil
}

// fetchBooks loads details for every id. Books the catalog does not know are
// logged and left out of the result.
func (u *Updater) fetchBooks(ctx context.Context, ids []models.BookID) (map[models.BookID]models.BookDetails, error) {
	results := make([]*models.BookDetails, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.config.Schedule.FetchConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			details, err := u.catalog.GetBook(gctx, id)
			if err != nil {
				return fmt.Errorf("book %d: %w", id, err)
			}
			results[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make(map[models.BookID]models.BookDetails, len(ids))
	for i, id := range ids {
		if results[i] == nil {
			u.logger.Warn().Int32("book_id", int32(id)).Msg("book not found in catalog")
			continue
		}
		details[id] = *results[i]
	}
	return details, nil
}
