// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"cmp"
	"slices"

	"github.com/tomtom215/bookrec/internal/models"
)

// AuthorPair is a co-occurrence key. First is always the lexicographically
// smaller author so (a, b) and (b, a) address the same counter.
type AuthorPair struct {
	First  string
	Second string
}

// NewAuthorPair returns the canonical pair for two authors.
func NewAuthorPair(a, b string) AuthorPair {
	if a > b {
		a, b = b, a
	}
	return AuthorPair{First: a, Second: b}
}

// sortByPopularity returns a copy of ids ordered most popular first.
// Unknown books score 0; ties are broken by ascending book id.
func sortByPopularity(ids []models.BookID, scores map[models.BookID]int64) []models.BookID {
	sorted := make([]models.BookID, len(ids))
	copy(sorted, ids)
	slices.SortStableFunc(sorted, func(a, b models.BookID) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return sorted
}

// authorScore pairs an author with a ranking score.
type authorScore struct {
	author string
	score  int64
}

// rankAuthors orders authors by descending score, ties by ascending name.
func rankAuthors(scores map[string]int64) []string {
	ranked := make([]authorScore, 0, len(scores))
	for author, score := range scores {
		ranked = append(ranked, authorScore{author: author, score: score})
	}
	slices.SortFunc(ranked, func(a, b authorScore) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.author, b.author)
	})

	authors := make([]string, len(ranked))
	for i, r := range ranked {
		authors[i] = r.author
	}
	return authors
}

// firstUnseen returns the first id in ranked that is neither in seen nor in picked.
func firstUnseen(ranked []models.BookID, seen, picked map[models.BookID]struct{}) (models.BookID, bool) {
	for _, id := range ranked {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := picked[id]; ok {
			continue
		}
		return id, true
	}
	return 0, false
}

// takeUnseen returns up to limit ids from ranked that are not in seen.
func takeUnseen(ranked []models.BookID, seen map[models.BookID]struct{}, limit int) []models.BookID {
	out := make([]models.BookID, 0, limit)
	for _, id := range ranked {
		if len(out) == limit {
			break
		}
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
