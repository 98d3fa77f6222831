// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"math"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid.
// A missing TMDB token (or embedding key, when that strategy is selected)
// wraps ErrMissingCredential.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateVectorizer(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateServer validates the HTTP listener settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateTMDB validates the catalog provider settings
func (c *Config) validateTMDB() error {
	if c.TMDB.APIToken == "" {
		return fmt.Errorf("TMDB_API_TOKEN is required: %w", ErrMissingCredential)
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.MaxRetries < 0 {
		return fmt.Errorf("TMDB_MAX_RETRIES must be >= 0, got %d", c.TMDB.MaxRetries)
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("TMDB_REQUESTS_PER_SECOND must be positive")
	}
	if c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_BURST must be >= 1, got %d", c.TMDB.Burst)
	}
	if c.TMDB.PageConcurrency < 1 {
		return fmt.Errorf("TMDB_PAGE_CONCURRENCY must be >= 1, got %d", c.TMDB.PageConcurrency)
	}
	return nil
}

// maxCatalogPages is the discover endpoint's page ceiling.
const maxCatalogPages = 500

// validateCatalog validates the default fetch window and refresh schedule
func (c *Config) validateCatalog() error {
	from, to, err := c.Catalog.ReleaseWindow()
	if err != nil {
		return fmt.Errorf("CATALOG_RELEASE_FROM/CATALOG_RELEASE_TO must use YYYY-MM-DD: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("CATALOG_RELEASE_TO (%s) is before CATALOG_RELEASE_FROM (%s)",
			c.Catalog.ReleaseTo, c.Catalog.ReleaseFrom)
	}
	if c.Catalog.Pages < 1 || c.Catalog.Pages > maxCatalogPages {
		return fmt.Errorf("CATALOG_PAGES must be between 1 and %d, got %d", maxCatalogPages, c.Catalog.Pages)
	}
	if c.Catalog.MinVoteCount < 0 {
		return fmt.Errorf("CATALOG_MIN_VOTE_COUNT must be >= 0, got %d", c.Catalog.MinVoteCount)
	}
	if c.Catalog.RefreshInterval < 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must be >= 0")
	}
	if c.Catalog.BuildTimeout <= 0 {
		return fmt.Errorf("CATALOG_BUILD_TIMEOUT must be positive")
	}
	if c.Features.GenreBoost < 0 {
		return fmt.Errorf("GENRE_BOOST must be >= 0, got %d", c.Features.GenreBoost)
	}
	return nil
}

// validateVectorizer validates the vectorizer strategy and its settings
func (c *Config) validateVectorizer() error {
	switch c.Vectorizer.Strategy {
	case "tfidf":
		if c.Vectorizer.TFIDF.MaxFeatures < 1 {
			return fmt.Errorf("TFIDF_MAX_FEATURES must be >= 1, got %d", c.Vectorizer.TFIDF.MaxFeatures)
		}
	case "embedding":
		if err := validateHTTPURL(c.Vectorizer.Embedding.BaseURL, "EMBEDDING_BASE_URL"); err != nil {
			return err
		}
		if c.Vectorizer.Embedding.APIKey == "" {
			return fmt.Errorf("EMBEDDING_API_KEY is required when VECTORIZER_STRATEGY=embedding: %w", ErrMissingCredential)
		}
		if c.Vectorizer.Embedding.Model == "" {
			return fmt.Errorf("EMBEDDING_MODEL is required when VECTORIZER_STRATEGY=embedding")
		}
		if c.Vectorizer.Embedding.BatchSize < 1 {
			return fmt.Errorf("EMBEDDING_BATCH_SIZE must be >= 1, got %d", c.Vectorizer.Embedding.BatchSize)
		}
	default:
		return fmt.Errorf("VECTORIZER_STRATEGY must be one of: tfidf, embedding")
	}
	if c.Similarity.PrecomputeMatrix && c.Similarity.MatrixMaxItems < 1 {
		return fmt.Errorf("SIMILARITY_MATRIX_MAX must be >= 1 when the matrix is precomputed")
	}
	return nil
}

// validateRanking validates the blend policy
func (c *Config) validateRanking() error {
	if c.Ranking.Mode != "blended" && c.Ranking.Mode != "similarity" {
		return fmt.Errorf("RANKING_MODE must be one of: blended, similarity")
	}
	w := c.Ranking.Weights
	for name, v := range map[string]float64{
		"RANKING_WEIGHT_SIMILARITY": w.Similarity,
		"RANKING_WEIGHT_RATING":     w.Rating,
		"RANKING_WEIGHT_POPULARITY": w.Popularity,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite value >= 0", name)
		}
	}
	if w.Similarity+w.Rating+w.Popularity == 0 {
		return fmt.Errorf("ranking weights must not all be zero")
	}
	if c.Ranking.VoteCap < 1 {
		return fmt.Errorf("RANKING_VOTE_CAP must be >= 1, got %d", c.Ranking.VoteCap)
	}
	return nil
}

// validateLimits validates request size limits
func (c *Config) validateLimits() error {
	if c.Limits.MaxTopN < 1 {
		return fmt.Errorf("MAX_TOP_N must be >= 1, got %d", c.Limits.MaxTopN)
	}
	if c.Limits.DefaultTopN < 1 || c.Limits.DefaultTopN > c.Limits.MaxTopN {
		return fmt.Errorf("DEFAULT_TOP_N must be between 1 and MAX_TOP_N (%d), got %d",
			c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}
	return nil
}

// validateCache validates the result cache settings
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be >= 1 when the cache is enabled")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RebuildRateLimitReqs < minRateLimitRequests || c.Security.RebuildRateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("REBUILD_RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateHTTPURL validates that a URL is an absolute http or https URL
// without query parameters. Unlike a plain host URL, an API root may
// carry a version path such as /3.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
