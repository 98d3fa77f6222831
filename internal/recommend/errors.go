// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "errors"

var (
	// ErrEmptyCatalog is returned by Build when the catalog has no items.
	ErrEmptyCatalog = errors.New("cannot build similarity index over an empty catalog")

	// ErrVectorization wraps vectorizer failures and malformed vectorizer output.
	ErrVectorization = errors.New("vectorization failed")

	// ErrNotReady is returned by Engine queries before the first successful build.
	ErrNotReady = errors.New("no catalog snapshot available")
)
