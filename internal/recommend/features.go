// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"strings"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// ComposeText builds the text fed to the vectorizer for one item:
// title, synopsis, then the genre labels joined by spaces and repeated
// boost times. Empty parts are skipped, so an item with no text yields "".
//
// Repeating the genre labels raises their weight relative to the synopsis
// prose without a separate weighted feature step.
//
//nolint:gocritic // hugeParam: Item passed by value for immutability
func ComposeText(item catalog.Item, boost int) string {
	parts := make([]string, 0, 2+boost)
	if t := strings.TrimSpace(item.Title); t != "" {
		parts = append(parts, t)
	}
	if s := strings.TrimSpace(item.Synopsis); s != "" {
		parts = append(parts, s)
	}
	if genres := strings.TrimSpace(strings.Join(item.Genres, " ")); genres != "" {
		for i := 0; i < boost; i++ {
			parts = append(parts, genres)
		}
	}
	return strings.Join(parts, " ")
}

// ComposeTexts composes every catalog item in catalog order.
func ComposeTexts(cat *catalog.Catalog, boost int) []string {
	texts := make([]string, cat.Len())
	for i := range texts {
		texts[i] = ComposeText(cat.At(i), boost)
	}
	return texts
}
