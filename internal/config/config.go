// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads Reelmatch configuration from defaults, an optional
// YAML file and environment variables (in increasing priority).
package config

import (
	"errors"
	"time"
)

// ErrMissingCredential is returned when a collaborator credential that the
// selected configuration depends on is absent. Callers distinguish it from
// other configuration errors with errors.Is and refuse to start.
var ErrMissingCredential = errors.New("missing credential")

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Features   FeaturesConfig   `koanf:"features"`
	Vectorizer VectorizerConfig `koanf:"vectorizer"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Ranking    RankingConfig    `koanf:"ranking"`
	Limits     LimitsConfig     `koanf:"limits"`
	Cache      CacheConfig      `koanf:"cache"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// TMDBConfig holds settings for the movie metadata API.
//
// Environment Variables:
//   - TMDB_API_TOKEN: v4 read access token sent as a bearer credential (required)
//   - TMDB_BASE_URL: API root (default: https://api.themoviedb.org/3)
//   - TMDB_LANGUAGE: response language (default: en-US)
//   - TMDB_REQUESTS_PER_SECOND: client side request pacing (default: 20)
type TMDBConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIToken          string        `koanf:"api_token"`
	Language          string        `koanf:"language"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	PageConcurrency   int           `koanf:"page_concurrency"`
	GenreCacheTTL     time.Duration `koanf:"genre_cache_ttl"`
}

// CatalogConfig holds the default fetch window and the refresh schedule.
//
// Release dates use the YYYY-MM-DD layout expected by the discover endpoint.
type CatalogConfig struct {
	ReleaseFrom     string        `koanf:"release_from"`
	ReleaseTo       string        `koanf:"release_to"`
	Pages           int           `koanf:"pages"`
	MinVoteCount    int           `koanf:"min_vote_count"`
	SortBy          string        `koanf:"sort_by"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	BuildOnStartup  bool          `koanf:"build_on_startup"`
	BuildTimeout    time.Duration `koanf:"build_timeout"`
}

// FeaturesConfig controls how item text is composed before vectorizing.
type FeaturesConfig struct {
	// GenreBoost is how many times the joined genre names are appended to
	// the item text. 0 leaves genres out of the text entirely.
	// Default: 3
	GenreBoost int `koanf:"genre_boost"`
}

// VectorizerConfig selects and tunes the feature vectorizer.
type VectorizerConfig struct {
	// Strategy is "tfidf" or "embedding".
	// Default: tfidf
	Strategy  string          `koanf:"strategy"`
	TFIDF     TFIDFConfig     `koanf:"tfidf"`
	Embedding EmbeddingConfig `koanf:"embedding"`
}

// TFIDFConfig tunes the lexical vectorizer.
type TFIDFConfig struct {
	MaxFeatures int  `koanf:"max_features"`
	SublinearTF bool `koanf:"sublinear_tf"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
//
// Environment Variables:
//   - EMBEDDING_BASE_URL: endpoint root, "/embeddings" is appended
//   - EMBEDDING_API_KEY: bearer key (required when strategy=embedding)
//   - EMBEDDING_MODEL: model name (default: all-MiniLM-L6-v2)
type EmbeddingConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Model      string        `koanf:"model"`
	BatchSize  int           `koanf:"batch_size"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
}

// SimilarityConfig selects between on-demand scoring and a precomputed matrix.
type SimilarityConfig struct {
	PrecomputeMatrix bool `koanf:"precompute_matrix"`
	MatrixMaxItems   int  `koanf:"matrix_max_items"`
}

// RankingConfig is the blend policy applied to candidates.
type RankingConfig struct {
	// Mode is "blended" or "similarity".
	Mode    string        `koanf:"mode"`
	Weights WeightsConfig `koanf:"weights"`
	VoteCap int           `koanf:"vote_cap"`
}

// WeightsConfig holds the blended score coefficients.
type WeightsConfig struct {
	Similarity float64 `koanf:"similarity"`
	Rating     float64 `koanf:"rating"`
	Popularity float64 `koanf:"popularity"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`
}

// CacheConfig controls the recommendation result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// SecurityConfig holds CORS and API rate limit settings.
type SecurityConfig struct {
	CORSOrigins          []string      `koanf:"cors_origins"`
	RateLimitReqs        int           `koanf:"rate_limit_reqs"`
	RateLimitWindow      time.Duration `koanf:"rate_limit_window"`
	RebuildRateLimitReqs int           `koanf:"rebuild_rate_limit_reqs"`
	RateLimitDisabled    bool          `koanf:"rate_limit_disabled"`
}

// ReleaseWindow parses the configured release window.
func (c *CatalogConfig) ReleaseWindow() (from, to time.Time, err error) {
	from, err = time.Parse(DateLayout, c.ReleaseFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err = time.Parse(DateLayout, c.ReleaseTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// DateLayout is the date format used for release windows.
const DateLayout = "2006-01-02"
