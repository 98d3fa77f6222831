// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// Query asks for items similar to Title.
type Query struct {
	// Title of the query item. Matched exactly, then case-insensitively.
	Title string `json:"title"`

	// Genres restricts results to items sharing at least one genre.
	// Empty keeps every item.
	Genres []string `json:"genres,omitempty"`

	// TopN is the maximum number of results. <= 0 yields an empty list.
	TopN int `json:"top_n"`
}

// cacheKey identifies q within one snapshot version. Genre order and case
// do not change the result, so they do not change the key.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (q Query) cacheKey(version uint64) string {
	genres := make([]string, 0, len(q.Genres))
	for _, g := range q.Genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			genres = append(genres, g)
		}
	}
	sort.Strings(genres)

	var b strings.Builder
	b.WriteString(strconv.FormatUint(version, 10))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(q.Title))
	b.WriteByte('|')
	b.WriteString(strings.Join(genres, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.TopN))
	return b.String()
}

// Recommendation is one ranked result row.
type Recommendation struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Rating     float64  `json:"rating"`
	VoteCount  int      `json:"vote_count"`
	Genres     []string `json:"genres"`
	Overview   string   `json:"overview"`
	Similarity float64  `json:"similarity"`
	Score      float64  `json:"score"`
}

//nolint:gocritic // hugeParam: Item passed by value for immutability
func newRecommendation(item catalog.Item, c candidate) Recommendation {
	genres := make([]string, len(item.Genres))
	copy(genres, item.Genres)
	return Recommendation{
		ID:         item.ID,
		Title:      item.Title,
		Year:       item.Year,
		Rating:     item.Rating,
		VoteCount:  item.VoteCount,
		Genres:     genres,
		Overview:   item.Synopsis,
		Similarity: c.similarity,
		Score:      c.score,
	}
}

// Result is the outcome of a query. Found is false when the title is not in
// the catalog; that is a normal outcome, not an error.
type Result struct {
	Found           bool             `json:"found"`
	Query           string           `json:"query"`
	Genres          []string         `json:"genres,omitempty"`
	Items           []Recommendation `json:"items"`
	SnapshotVersion uint64           `json:"snapshot_version"`
}

// clone returns a deep copy so cached results cannot be mutated by callers.
func (r *Result) clone() *Result {
	out := *r
	if r.Genres != nil {
		out.Genres = append([]string(nil), r.Genres...)
	}
	out.Items = make([]Recommendation, len(r.Items))
	for i := range r.Items {
		out.Items[i] = r.Items[i]
		out.Items[i].Genres = make([]string, len(r.Items[i].Genres))
		copy(out.Items[i].Genres, r.Items[i].Genres)
	}
	return &out
}
