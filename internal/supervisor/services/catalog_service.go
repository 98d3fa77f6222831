// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Defaults applied by NewCatalogService for zero values.
const (
	DefaultBuildTimeout    = 5 * time.Minute
	DefaultRefreshInterval = 24 * time.Hour
)

// CatalogEngine is the part of *recommend.Engine the catalog service drives.
type CatalogEngine interface {
	Ready() bool
	Rebuild(ctx context.Context, window catalog.Window, pages int) (*recommend.Snapshot, error)
	Refresh(ctx context.Context) (*recommend.Snapshot, error)
}

// CatalogServiceConfig holds configuration for the catalog service.
type CatalogServiceConfig struct {
	// Window and Pages are used for the startup build and for any
	// scheduled build that runs before a snapshot exists.
	Window catalog.Window
	Pages  int

	// BuildOnStartup builds the first snapshot as soon as the service starts.
	BuildOnStartup bool

	// RefreshInterval is how often the snapshot is rebuilt. Negative
	// disables scheduled refreshes.
	RefreshInterval time.Duration

	// BuildTimeout bounds a single build.
	BuildTimeout time.Duration
}

// CatalogService owns the snapshot lifecycle under supervision.
//
// A failed startup build is returned as an error so suture restarts the
// service with backoff until a first snapshot exists. Failed scheduled
// refreshes are logged and the previous snapshot keeps serving.
type CatalogService struct {
	engine CatalogEngine
	config CatalogServiceConfig
	logger zerolog.Logger
	name   string
}

// NewCatalogService creates a new catalog service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogService(engine CatalogEngine, cfg CatalogServiceConfig, logger zerolog.Logger) *CatalogService {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	return &CatalogService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "catalog").Logger(),
		name:   "catalog-refresh",
	}
}

// Serve implements suture.Service.
func (s *CatalogService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("build_on_startup", s.config.BuildOnStartup).
		Dur("refresh_interval", s.config.RefreshInterval).
		Str("window", s.config.Window.String()).
		Int("pages", s.config.Pages).
		Msg("catalog service starting")

	// A restart after an earlier success must not rebuild immediately.
	if s.config.BuildOnStartup && !s.engine.Ready() {
		if err := s.build(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("initial catalog build: %w", err)
		}
	}

	if s.config.RefreshInterval < 0 {
		s.logger.Info().Msg("scheduled refresh disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled catalog refresh triggered")
			if err := s.build(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled catalog refresh failed, previous snapshot kept")
			}
		}
	}
}

// build refreshes the current snapshot, or builds the first one from the
// configured window when none exists yet.
func (s *CatalogService) build(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	var err error
	if s.engine.Ready() {
		_, err = s.engine.Refresh(buildCtx)
	} else {
		_, err = s.engine.Rebuild(buildCtx, s.config.Window, s.config.Pages)
	}
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("service", "catalog").
		Dur("duration", time.Since(start)).
		Msg("catalog build complete")
	return nil
}

// String returns the service name for logging.
func (s *CatalogService) String() string {
	return s.name
}
