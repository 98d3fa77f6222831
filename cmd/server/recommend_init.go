// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/vectorizer"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine        *recommend.Engine
	Service       *services.CatalogService
	DefaultWindow catalog.Window
}

// initRecommend wires the TMDB provider, the vectorizer and the engine.
// The returned service is not yet added to a supervisor tree.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	window, err := defaultWindow(cfg)
	if err != nil {
		return nil, err
	}

	client, err := catalog.NewTMDBClient(&cfg.TMDB)
	if err != nil {
		return nil, fmt.Errorf("create tmdb client: %w", err)
	}
	provider := catalog.NewCircuitBreakerProvider(client, "tmdb")

	vec, err := newVectorizer(&cfg.Vectorizer)
	if err != nil {
		return nil, err
	}

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), provider, vec, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	logger.Info().
		Str("vectorizer", vec.Name()).
		Str("window", window.String()).
		Int("pages", cfg.Catalog.Pages).
		Str("ranking", cfg.Ranking.Mode).
		Bool("precompute_matrix", cfg.Similarity.PrecomputeMatrix).
		Msg("Recommendation engine initialized")

	service := services.NewCatalogService(engine, services.CatalogServiceConfig{
		Window:          window,
		Pages:           cfg.Catalog.Pages,
		BuildOnStartup:  cfg.Catalog.BuildOnStartup,
		RefreshInterval: cfg.Catalog.RefreshInterval,
		BuildTimeout:    cfg.Catalog.BuildTimeout,
	}, logger)

	return &RecommendComponents{
		Engine:        engine,
		Service:       service,
		DefaultWindow: window,
	}, nil
}

// defaultWindow builds the catalog window used for startup, scheduled
// refreshes and as the base of API rebuild requests.
func defaultWindow(cfg *config.Config) (catalog.Window, error) {
	from, to, err := cfg.Catalog.ReleaseWindow()
	if err != nil {
		return catalog.Window{}, fmt.Errorf("catalog release window: %w", err)
	}
	window := catalog.Window{
		From:         from,
		To:           to,
		MinVoteCount: cfg.Catalog.MinVoteCount,
		SortBy:       cfg.Catalog.SortBy,
		Language:     cfg.TMDB.Language,
	}
	if err := window.Validate(); err != nil {
		return catalog.Window{}, err
	}
	return window, nil
}

// newVectorizer selects the text vectorization strategy.
func newVectorizer(cfg *config.VectorizerConfig) (recommend.Vectorizer, error) {
	switch cfg.Strategy {
	case "", "tfidf":
		return vectorizer.NewTFIDF(vectorizer.TFIDFConfig{
			MaxFeatures: cfg.TFIDF.MaxFeatures,
			SublinearTF: cfg.TFIDF.SublinearTF,
		}), nil
	case "embedding":
		client, err := vectorizer.NewEmbeddingClient(&cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("create embedding client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown vectorizer strategy %q", cfg.Strategy)
	}
}

// buildEngineConfig creates the engine configuration from app config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		GenreBoost: cfg.Features.GenreBoost,
		Ranking: recommend.RankingConfig{
			Mode: recommend.RankMode(cfg.Ranking.Mode),
			Weights: recommend.Weights{
				Similarity: cfg.Ranking.Weights.Similarity,
				Rating:     cfg.Ranking.Weights.Rating,
				Popularity: cfg.Ranking.Weights.Popularity,
			},
			VoteCap: cfg.Ranking.VoteCap,
		},
		PrecomputeMatrix: cfg.Similarity.PrecomputeMatrix,
		MatrixMaxItems:   cfg.Similarity.MatrixMaxItems,
		Limits: recommend.LimitsConfig{
			DefaultTopN: cfg.Limits.DefaultTopN,
			MaxTopN:     cfg.Limits.MaxTopN,
		},
		Cache: recommend.CacheConfig{
			Enabled:    cfg.Cache.Enabled,
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		},
	}
}
