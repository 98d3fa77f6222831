// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			APIToken:          "", // Required
			Language:          "en-US",
			Timeout:           30 * time.Second,
			MaxRetries:        5,
			RetryBaseDelay:    1 * time.Second,
			RequestsPerSecond: 20,
			Burst:             5,
			PageConcurrency:   4,
			GenreCacheTTL:     24 * time.Hour,
		},
		Catalog: CatalogConfig{
			ReleaseFrom:     "2000-01-01",
			ReleaseTo:       "2025-12-31",
			Pages:           8,
			MinVoteCount:    500,
			SortBy:          "vote_average.desc",
			RefreshInterval: 24 * time.Hour,
			BuildOnStartup:  true,
			BuildTimeout:    5 * time.Minute,
		},
		Features: FeaturesConfig{
			GenreBoost: 3,
		},
		Vectorizer: VectorizerConfig{
			Strategy: "tfidf",
			TFIDF: TFIDFConfig{
				MaxFeatures: 5000,
				SublinearTF: false,
			},
			Embedding: EmbeddingConfig{
				BaseURL:    "",
				APIKey:     "",
				Model:      "all-MiniLM-L6-v2",
				BatchSize:  64,
				Timeout:    60 * time.Second,
				MaxRetries: 3,
			},
		},
		Similarity: SimilarityConfig{
			PrecomputeMatrix: false,
			MatrixMaxItems:   2000,
		},
		Ranking: RankingConfig{
			Mode: "blended",
			Weights: WeightsConfig{
				Similarity: 0.6,
				Rating:     0.3,
				Popularity: 0.1,
			},
			VoteCap: 5000,
		},
		Limits: LimitsConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Security: SecurityConfig{
			CORSOrigins:          []string{"*"},
			RateLimitReqs:        100,
			RateLimitWindow:      1 * time.Minute,
			RebuildRateLimitReqs: 5,
			RateLimitDisabled:    false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The returned Config has passed Validate.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TMDB_API_TOKEN -> tmdb.api_token
	// CATALOG_PAGES -> catalog.pages
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// TMDB
	"tmdb_base_url":            "tmdb.base_url",
	"tmdb_api_token":           "tmdb.api_token",
	"tmdb_language":            "tmdb.language",
	"tmdb_timeout":             "tmdb.timeout",
	"tmdb_max_retries":         "tmdb.max_retries",
	"tmdb_retry_base_delay":    "tmdb.retry_base_delay",
	"tmdb_requests_per_second": "tmdb.requests_per_second",
	"tmdb_burst":               "tmdb.burst",
	"tmdb_page_concurrency":    "tmdb.page_concurrency",
	"tmdb_genre_cache_ttl":     "tmdb.genre_cache_ttl",

	// Catalog window and schedule
	"catalog_release_from":     "catalog.release_from",
	"catalog_release_to":       "catalog.release_to",
	"catalog_pages":            "catalog.pages",
	"catalog_min_vote_count":   "catalog.min_vote_count",
	"catalog_sort_by":          "catalog.sort_by",
	"catalog_refresh_interval": "catalog.refresh_interval",
	"catalog_build_on_startup": "catalog.build_on_startup",
	"catalog_build_timeout":    "catalog.build_timeout",

	// Features
	"genre_boost": "features.genre_boost",

	// Vectorizer
	"vectorizer_strategy":   "vectorizer.strategy",
	"tfidf_max_features":    "vectorizer.tfidf.max_features",
	"tfidf_sublinear_tf":    "vectorizer.tfidf.sublinear_tf",
	"embedding_base_url":    "vectorizer.embedding.base_url",
	"embedding_api_key":     "vectorizer.embedding.api_key",
	"embedding_model":       "vectorizer.embedding.model",
	"embedding_batch_size":  "vectorizer.embedding.batch_size",
	"embedding_timeout":     "vectorizer.embedding.timeout",
	"embedding_max_retries": "vectorizer.embedding.max_retries",
	"similarity_precompute": "similarity.precompute_matrix",
	"similarity_matrix_max": "similarity.matrix_max_items",

	// Ranking
	"ranking_mode":              "ranking.mode",
	"ranking_weight_similarity": "ranking.weights.similarity",
	"ranking_weight_rating":     "ranking.weights.rating",
	"ranking_weight_popularity": "ranking.weights.popularity",
	"ranking_vote_cap":          "ranking.vote_cap",

	// Limits
	"default_top_n": "limits.default_top_n",
	"max_top_n":     "limits.max_top_n",

	// Result cache
	"cache_enabled":     "cache.enabled",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",

	// Security
	"cors_origins":                "security.cors_origins",
	"rate_limit_requests":         "security.rate_limit_reqs",
	"rate_limit_window":           "security.rate_limit_window",
	"rebuild_rate_limit_requests": "security.rebuild_rate_limit_reqs",
	"disable_rate_limit":          "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TMDB_API_TOKEN -> tmdb.api_token
//   - CATALOG_PAGES -> catalog.pages
//   - HTTP_PORT -> server.port
//   - RANKING_MODE -> ranking.mode
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables
	// do not pollute the config.
	return ""
}
