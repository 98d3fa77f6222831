// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrFetch wraps every provider failure (transport, HTTP status, decoding,
// open circuit). An empty but successful listing is not an error.
var ErrFetch = errors.New("catalog fetch failed")

// DateLayout is the release date format used by windows and the provider.
const DateLayout = "2006-01-02"

// MaxPages is the highest page the discover endpoint serves.
const MaxPages = 500

// Window selects which movies a fetch returns.
type Window struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	MinVoteCount int       `json:"min_vote_count"`
	SortBy       string    `json:"sort_by"`
	Language     string    `json:"language,omitempty"`
}

// Validate reports whether w can be sent to a provider.
//
//nolint:gocritic // hugeParam
func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return errors.New("window requires both from and to dates")
	}
	if w.To.Before(w.From) {
		return fmt.Errorf("window to (%s) is before from (%s)", w.To.Format(DateLayout), w.From.Format(DateLayout))
	}
	if w.MinVoteCount < 0 {
		return fmt.Errorf("min_vote_count must be >= 0, got %d", w.MinVoteCount)
	}
	return nil
}

// String renders the window for logs and status output.
//
//nolint:gocritic // hugeParam
func (w Window) String() string {
	return fmt.Sprintf("%s..%s votes>=%d sort=%s",
		w.From.Format(DateLayout), w.To.Format(DateLayout), w.MinVoteCount, w.SortBy)
}

// GenreMap maps provider genre IDs to display names.
type GenreMap map[int]string

// Names returns the genre names sorted alphabetically.
func (m GenreMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps ids to names in order, skipping unknown ids.
func (m GenreMap) Resolve(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := m[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Provider fetches movie listings from an external catalog.
//
// Fetch returns up to pages pages of results for the window, deduplicated
// by title and in provider order. Failures wrap ErrFetch.
type Provider interface {
	Fetch(ctx context.Context, window Window, pages int) ([]Item, error)
	Genres(ctx context.Context) (GenreMap, error)
}
