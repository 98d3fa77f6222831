// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend implements the content-based similarity engine.
//
// # Architecture
//
// A recommendation pass has two phases:
//
//   - Build: every catalog item is composed into a single text (title,
//     synopsis, boosted genre labels), vectorized in one batch, and the
//     vectors are L2-normalised into an immutable Snapshot. An optional
//     full similarity matrix is precomputed for small catalogs.
//   - Query: a title resolves to a catalog index, every other item is scored
//     by cosine similarity, filtered by genre (OR semantics), blended with
//     rating and vote count, sorted and truncated.
//
// # Ranking
//
// The blended score is
//
//	score = w_sim * clamp01(similarity) + w_rating * rating/10 + w_pop * min(votes, cap)/cap
//
// with defaults DefaultSimilarityWeight, DefaultRatingWeight,
// DefaultPopularityWeight and DefaultVoteCap. RankBlended orders by the
// blended score and RankSimilarity orders by raw similarity; both fall back
// to catalog order so output is deterministic.
//
// # Usage
//
//	snap, err := recommend.Build(ctx, cat, vectorizer.NewTFIDF(cfg), recommend.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	result := snap.Recommend(recommend.Query{Title: "Heat", Genres: []string{"Crime"}, TopN: 10})
//
// # Thread Safety
//
// A Snapshot is never mutated after Build, so queries need no locks. The
// Engine publishes snapshots through an atomic pointer: a rebuild constructs
// a wholly new Snapshot and swaps it in, and in-flight queries keep the
// snapshot they loaded.
//
// # Errors
//
// An unknown title is a normal outcome (Result.Found == false). Building over
// an empty catalog returns ErrEmptyCatalog, vectorizer failures wrap
// ErrVectorization, and querying an Engine before its first build returns
// ErrNotReady.
package recommend
