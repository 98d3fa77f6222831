// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"math"
	"strings"
)

// Rating bounds on the provider's vote average scale.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Item is one movie in the catalog.
type Item struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Synopsis  string   `json:"overview"`
	Year      string   `json:"year,omitempty"` // 4-digit release year or ""
	Rating    float64  `json:"rating"`         // clamped to [0,10]
	VoteCount int      `json:"vote_count"`
	Genres    []string `json:"genres"` // ordered set, first appearance wins
}

// Normalize returns a copy of it with the ingest rules applied: trimmed
// title, rating clamped to [MinRating, MaxRating], non-negative vote count
// and a duplicate-free genre list.
//
//nolint:gocritic // hugeParam: returns a modified copy
func Normalize(it Item) Item {
	it.Title = strings.TrimSpace(it.Title)
	it.Synopsis = strings.TrimSpace(it.Synopsis)
	it.Rating = ClampRating(it.Rating)
	if it.VoteCount < 0 {
		it.VoteCount = 0
	}
	it.Genres = OrderedGenres(it.Genres)
	return it
}

// ClampRating limits r to [MinRating, MaxRating]. NaN becomes MinRating.
func ClampRating(r float64) float64 {
	switch {
	case math.IsNaN(r) || r < MinRating:
		return MinRating
	case r > MaxRating:
		return MaxRating
	default:
		return r
	}
}

// OrderedGenres removes blank and repeated names, keeping first appearance.
// The returned slice never aliases genres.
func OrderedGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// YearFromDate extracts the year from a YYYY-MM-DD release date.
// Anything without four leading digits yields "".
func YearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return date[:4]
}
