// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// Blend policy defaults. Changing these changes recommendation quality, so
// they are configurable through ranking.weights.* and ranking.vote_cap rather
// than edited in place.
const (
	DefaultSimilarityWeight = 0.6
	DefaultRatingWeight     = 0.3
	DefaultPopularityWeight = 0.1
	DefaultVoteCap          = 5000
)

// DefaultGenreBoost is how many times genre labels are repeated in the
// composed text.
const DefaultGenreBoost = 3

// RankMode selects the primary sort key.
type RankMode string

const (
	// RankBlended sorts by blended score, then similarity, then catalog order.
	RankBlended RankMode = "blended"

	// RankSimilarity sorts by similarity, then blended score, then catalog order.
	RankSimilarity RankMode = "similarity"
)

// Weights are the blend coefficients. They are applied as given.
type Weights struct {
	Similarity float64 `json:"similarity"`
	Rating     float64 `json:"rating"`
	Popularity float64 `json:"popularity"`
}

// RankingConfig is the filter-and-rank policy.
type RankingConfig struct {
	Mode    RankMode `json:"mode"`
	Weights Weights  `json:"weights"`
	VoteCap int      `json:"vote_cap"`
}

// DefaultRankingConfig returns the blended policy with the default weights.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		Mode: RankBlended,
		Weights: Weights{
			Similarity: DefaultSimilarityWeight,
			Rating:     DefaultRatingWeight,
			Popularity: DefaultPopularityWeight,
		},
		VoteCap: DefaultVoteCap,
	}
}

// Validate checks the ranking policy.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (r RankingConfig) Validate() error {
	if r.Mode != RankBlended && r.Mode != RankSimilarity {
		return fmt.Errorf("ranking mode must be %q or %q, got %q", RankBlended, RankSimilarity, r.Mode)
	}
	if r.Weights.Similarity < 0 || r.Weights.Rating < 0 || r.Weights.Popularity < 0 {
		return errors.New("ranking weights must be non-negative")
	}
	if r.Weights.Similarity+r.Weights.Rating+r.Weights.Popularity == 0 {
		return errors.New("at least one ranking weight must be positive")
	}
	if r.VoteCap < 1 {
		return fmt.Errorf("vote cap must be >= 1, got %d", r.VoteCap)
	}
	return nil
}

// Config contains all configuration for building and querying snapshots.
type Config struct {
	// GenreBoost repeats genre labels in the composed text. 0 disables genre text.
	GenreBoost int `json:"genre_boost"`

	// Ranking is the blend and sort policy.
	Ranking RankingConfig `json:"ranking"`

	// PrecomputeMatrix stores the full n x n similarity matrix when the
	// catalog has at most MatrixMaxItems items.
	PrecomputeMatrix bool `json:"precompute_matrix"`
	MatrixMaxItems   int  `json:"matrix_max_items"`

	// Limits contains query limits applied by the Engine.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result caching parameters for the Engine.
	Cache CacheConfig `json:"cache"`
}

// LimitsConfig bounds query sizes.
type LimitsConfig struct {
	DefaultTopN int `json:"default_top_n"`
	MaxTopN     int `json:"max_top_n"`
}

// CacheConfig configures the Engine result cache.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GenreBoost:       DefaultGenreBoost,
		Ranking:          DefaultRankingConfig(),
		PrecomputeMatrix: false,
		MatrixMaxItems:   2000,
		Limits: LimitsConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GenreBoost < 0 {
		return fmt.Errorf("genre boost must be >= 0, got %d", c.GenreBoost)
	}
	if err := c.Ranking.Validate(); err != nil {
		return err
	}
	if c.PrecomputeMatrix && c.MatrixMaxItems < 1 {
		return fmt.Errorf("matrix max items must be >= 1, got %d", c.MatrixMaxItems)
	}
	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("default top_n must be >= 1, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("max top_n (%d) must be >= default top_n (%d)", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}
	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxEntries < 1) {
		return errors.New("cache ttl and max entries must be positive when the cache is enabled")
	}
	return nil
}
