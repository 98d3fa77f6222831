// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/logging"
)

// Snapshot is one immutable build of the similarity index: the catalog,
// its unit-length feature vectors and, optionally, the full similarity
// matrix. Every method is safe for concurrent use.
type Snapshot struct {
	catalog *catalog.Catalog
	vectors [][]float64 // unit length or all zeros, index-aligned with catalog
	matrix  [][]float64 // nil unless precomputed

	degenerate      []bool
	degenerateCount int
	dimension       int

	ranking    RankingConfig
	vectorizer string
	builtAt    time.Time

	// Set by Engine before the snapshot is published.
	version uint64
	window  string
}

// Build vectorizes every catalog item and returns a new Snapshot.
//
// An empty catalog returns ErrEmptyCatalog. A vectorizer error, or output
// that is not one equal-length vector per item, wraps ErrVectorization.
// Items whose vector has zero magnitude are kept and score 0 against
// everything.
func Build(ctx context.Context, cat *catalog.Catalog, v Vectorizer, cfg *Config) (*Snapshot, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	n := cat.Len()
	if n == 0 {
		return nil, ErrEmptyCatalog
	}

	texts := ComposeTexts(cat, cfg.GenreBoost)

	raw, err := v.Vectorize(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVectorization, v.Name(), err)
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d items", ErrVectorization, v.Name(), len(raw), n)
	}

	dim := len(raw[0])
	snap := &Snapshot{
		catalog:    cat,
		vectors:    make([][]float64, n),
		degenerate: make([]bool, n),
		dimension:  dim,
		ranking:    cfg.Ranking,
		vectorizer: v.Name(),
		builtAt:    time.Now().UTC(),
	}

	logger := logging.WithComponent("recommend")
	for i, vec := range raw {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: %s returned dimension %d at item %d, want %d",
				ErrVectorization, v.Name(), len(vec), i, dim)
		}
		unit, degenerate := normalize(vec)
		snap.vectors[i] = unit
		if degenerate {
			snap.degenerate[i] = true
			snap.degenerateCount++
			logger.Debug().
				Int("index", i).
				Str("title", cat.At(i).Title).
				Msg("item has no vector signal, similarity fixed at 0")
		}
	}

	if cfg.PrecomputeMatrix && n <= cfg.MatrixMaxItems {
		snap.matrix = snap.buildMatrix()
	}

	return snap, nil
}

// buildMatrix fills the symmetric n x n similarity matrix.
func (s *Snapshot) buildMatrix() [][]float64 {
	n := len(s.vectors)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m[i][i] = s.computeSimilarity(i, i)
		for j := i + 1; j < n; j++ {
			sim := s.computeSimilarity(i, j)
			m[i][j] = sim
			m[j][i] = sim
		}
	}
	return m
}

func (s *Snapshot) computeSimilarity(i, j int) float64 {
	if s.degenerate[i] || s.degenerate[j] {
		return 0
	}
	return clampUnit(dot(s.vectors[i], s.vectors[j]))
}

// Similarity returns the cosine similarity of items i and j. It is symmetric
// and 0 when either item is degenerate. It panics if an index is out of range.
func (s *Snapshot) Similarity(i, j int) float64 {
	if s.matrix != nil {
		return s.matrix[i][j]
	}
	return s.computeSimilarity(i, j)
}

// Catalog returns the catalog the snapshot was built from.
func (s *Snapshot) Catalog() *catalog.Catalog { return s.catalog }

// Len returns the number of items.
func (s *Snapshot) Len() int { return s.catalog.Len() }

// Dimension returns the vector length.
func (s *Snapshot) Dimension() int { return s.dimension }

// DegenerateCount returns how many items have a zero vector.
func (s *Snapshot) DegenerateCount() int { return s.degenerateCount }

// IsDegenerate reports whether item i has a zero vector.
func (s *Snapshot) IsDegenerate(i int) bool { return s.degenerate[i] }

// HasMatrix reports whether the full similarity matrix was precomputed.
func (s *Snapshot) HasMatrix() bool { return s.matrix != nil }

// Version returns the engine-assigned version, 0 for standalone builds.
func (s *Snapshot) Version() uint64 { return s.version }

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// VectorizerName returns the strategy that produced the vectors.
func (s *Snapshot) VectorizerName() string { return s.vectorizer }

// Window describes the catalog window, empty for standalone builds.
func (s *Snapshot) Window() string { return s.window }

// Ranking returns the ranking policy used by Recommend.
func (s *Snapshot) Ranking() RankingConfig { return s.ranking }

// Recommend answers q against the snapshot.
//
// An unknown title returns Found == false. TopN <= 0 returns an empty list.
// The query item is never part of its own results. The output is
// deterministic for a given snapshot and query.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (s *Snapshot) Recommend(q Query) Result {
	result := Result{
		Query:           q.Title,
		Genres:          append([]string(nil), q.Genres...),
		Items:           []Recommendation{},
		SnapshotVersion: s.version,
	}

	idx, ok := s.catalog.Lookup(q.Title)
	if !ok {
		return result
	}
	result.Found = true
	result.Query = s.catalog.At(idx).Title
	if q.TopN <= 0 {
		return result
	}

	filter := newGenreFilter(q.Genres)
	candidates := make([]candidate, 0, s.catalog.Len())
	for j := 0; j < s.catalog.Len(); j++ {
		if j == idx {
			continue
		}
		item := s.catalog.At(j)
		if !filter.matches(item.Genres) {
			continue
		}
		sim := s.Similarity(idx, j)
		candidates = append(candidates, candidate{
			index:      j,
			similarity: sim,
			score:      s.ranking.Blend(sim, item.Rating, item.VoteCount),
		})
	}

	ranked := s.ranking.rank(candidates, q.TopN)
	result.Items = make([]Recommendation, len(ranked))
	for i, c := range ranked {
		result.Items[i] = newRecommendation(s.catalog.At(c.index), c)
	}
	return result
}
