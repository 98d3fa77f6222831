// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"sort"
	"strings"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// candidate is one scored, filter-passing catalog item.
type candidate struct {
	index      int
	similarity float64
	score      float64
}

// Blend computes the blended score for a candidate. Each term is normalised
// to [0, 1] before weighting.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (r RankingConfig) Blend(similarity, rating float64, votes int) float64 {
	voteCap := r.VoteCap
	if voteCap < 1 {
		voteCap = DefaultVoteCap
	}
	if votes > voteCap {
		votes = voteCap
	}
	if votes < 0 {
		votes = 0
	}

	return r.Weights.Similarity*clamp01(similarity) +
		r.Weights.Rating*clamp01(rating/catalog.MaxRating) +
		r.Weights.Popularity*float64(votes)/float64(voteCap)
}

// less reports whether a ranks before b under the configured mode.
// Catalog index is the final key, so the order is total.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (r RankingConfig) less(a, b candidate) bool {
	primaryA, primaryB := a.score, b.score
	secondaryA, secondaryB := a.similarity, b.similarity
	if r.Mode == RankSimilarity {
		primaryA, primaryB = a.similarity, b.similarity
		secondaryA, secondaryB = a.score, b.score
	}

	if primaryA != primaryB {
		return primaryA > primaryB
	}
	if secondaryA != secondaryB {
		return secondaryA > secondaryB
	}
	return a.index < b.index
}

// rank sorts candidates in place and truncates to topN.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (r RankingConfig) rank(candidates []candidate, topN int) []candidate {
	sort.Slice(candidates, func(i, j int) bool {
		return r.less(candidates[i], candidates[j])
	})
	if topN < len(candidates) {
		candidates = candidates[:topN]
	}
	return candidates
}

// genreFilter is a case-insensitive set of requested genres.
// A nil filter keeps everything.
type genreFilter map[string]struct{}

// newGenreFilter builds a filter from requested genre names. Blank names are
// ignored; if none remain the filter is nil.
func newGenreFilter(genres []string) genreFilter {
	var f genreFilter
	for _, g := range genres {
		key := strings.ToLower(strings.TrimSpace(g))
		if key == "" {
			continue
		}
		if f == nil {
			f = make(genreFilter, len(genres))
		}
		f[key] = struct{}{}
	}
	return f
}

// matches reports whether genres intersects the filter (OR semantics).
func (f genreFilter) matches(genres []string) bool {
	if f == nil {
		return true
	}
	for _, g := range genres {
		if _, ok := f[strings.ToLower(g)]; ok {
			return true
		}
	}
	return false
}
