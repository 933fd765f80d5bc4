// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package models

// ReservationHistoryRecord is one closed reservation: the user returned the
// book at UnreservedAt (unix seconds).
type ReservationHistoryRecord struct {
	BookID       BookID `json:"book_id"`
	UnreservedAt int64  `json:"unreserved_at"`
}

// HistoryBookIDs returns the book ids of records in input order, duplicates included.
func HistoryBookIDs(records []ReservationHistoryRecord) []BookID {
	ids := make([]BookID, len(records))
	for i, r := range records {
		ids[i] = r.BookID
	}
	return ids
}
