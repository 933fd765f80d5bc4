// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package recommend materializes per-user book recommendations from
// reservation history and catalog metadata.
//
// # Architecture
//
// Four parts cooperate, leaf first:
//
//   - CoefficientsStorage: incrementally built indices (popularity,
//     author co-occurrence, author to books) with a per-user watermark so
//     every closed reservation is counted once per process.
//   - Engine: turns a storage snapshot plus a user's reservations and
//     history into a Recommendations value and caches it per user.
//   - Updater: the scheduling state machine. Each Tick selects a working
//     set of users (new users plus one shard of known users), fetches their
//     data from the upstream services and drives storage then engine.
//   - Provider: the read-side handle handed to the HTTP layer.
//
// # Recommendation Lists
//
// Every Recommendations value carries three capped lists, best first:
//
//   - MostPopular: globally most returned books the user has not seen
//   - AuthorMatch: one unseen book per author the user reads most
//   - NewAuthorMatch: books of authors the user has never read, ranked by
//     how often those authors co-occur with the user's authors
//
// Users without a cached entry receive the default recommendations: the
// global top list with both author lists empty.
//
// # Thread Safety
//
// CoefficientsStorage is guarded by a mutex held only while a batch is
// ingested. The Engine uses a RWMutex: the write lock covers only the swap
// of freshly computed entries, never an upstream call, so readers observe
// either the whole pre-tick or the whole post-tick batch.
//
// The Updater is a single writer. Tick must not be called concurrently.
//
// # Determinism
//
// All rankings break ties explicitly (book id ascending, author name
// ascending) so identical inputs produce identical outputs.
package recommend
