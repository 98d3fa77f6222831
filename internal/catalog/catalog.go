// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package catalog holds the movie catalog and the provider that fills it.
//
// A Catalog is an ordered, title-unique list of Items with constant-time
// title lookup. It never changes after New returns, so it can be shared
// between goroutines without locking. Providers fetch raw listings from the
// movie metadata API; TMDBClient is the production implementation and
// CircuitBreakerProvider guards it against a failing upstream.
package catalog

import (
	"sort"
	"strings"
)

// Catalog is an immutable, title-unique, ordered set of items.
type Catalog struct {
	items   []Item
	byTitle map[string]int
	byFold  map[string]int
}

// Dedupe applies Normalize to every item, drops items with a blank title
// and keeps only the first occurrence of each title. It returns the
// surviving items in input order and how many were dropped.
func Dedupe(items []Item) (out []Item, dropped int) {
	out = make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		it := Normalize(items[i])
		if it.Title == "" {
			dropped++
			continue
		}
		if _, dup := seen[it.Title]; dup {
			dropped++
			continue
		}
		seen[it.Title] = struct{}{}
		out = append(out, it)
	}
	return out, dropped
}

// New builds a Catalog from items. Items are deduplicated as by Dedupe;
// the caller's slice is not retained.
func New(items []Item) *Catalog {
	deduped, _ := Dedupe(items)

	c := &Catalog{
		items:   deduped,
		byTitle: make(map[string]int, len(deduped)),
		byFold:  make(map[string]int, len(deduped)),
	}
	for i := range deduped {
		c.byTitle[deduped[i].Title] = i
		fold := strings.ToLower(deduped[i].Title)
		if _, exists := c.byFold[fold]; !exists {
			c.byFold[fold] = i
		}
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the item at index i. It panics if i is out of range.
func (c *Catalog) At(i int) Item {
	return c.items[i]
}

// Lookup returns the index of title. An exact match wins; otherwise a
// case-insensitive match on the trimmed title is tried.
func (c *Catalog) Lookup(title string) (int, bool) {
	if c == nil {
		return 0, false
	}
	title = strings.TrimSpace(title)
	if idx, ok := c.byTitle[title]; ok {
		return idx, true
	}
	idx, ok := c.byFold[strings.ToLower(title)]
	return idx, ok
}

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Titles returns every title sorted alphabetically.
func (c *Catalog) Titles() []string {
	if c == nil {
		return []string{}
	}
	titles := make([]string, len(c.items))
	for i := range c.items {
		titles[i] = c.items[i].Title
	}
	sort.Strings(titles)
	return titles
}

// Genres returns the distinct genre names used by catalog items, sorted.
func (c *Catalog) Genres() []string {
	if c == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	for i := range c.items {
		for _, g := range c.items[i].Genres {
			seen[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
