// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "context"

// Vectorizer maps texts to fixed-length vectors.
//
// Implementations must return one vector per input text, in input order,
// all of the same length. An empty text yields a valid (possibly zero)
// vector. An empty input slice is an error.
type Vectorizer interface {
	// Name identifies the strategy in logs and status output.
	Name() string

	// Vectorize embeds texts in one batch pass.
	Vectorize(ctx context.Context, texts []string) ([][]float64, error)
}
