// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

/*
Package models defines the wire types shared with the upstream Book Catalog
and Reservations services.

The types mirror the JSON documents those services return:

  - BookTitleAndID: an entry of GET /api/books
  - BookDetails: the body of GET /api/book/{id}
  - ReservationHistoryRecord: an entry of GET /api/user/{id}/history

BookID and UserID are 32-bit identifiers assigned by the upstream services.
*/
package models
