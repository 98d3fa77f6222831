// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/middleware"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// DefaultBuildTimeout bounds a rebuild requested over HTTP when none is configured.
const DefaultBuildTimeout = 5 * time.Minute

// Recommender is the engine surface the handlers use. *recommend.Engine
// satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) (*recommend.Result, error)
	Rebuild(ctx context.Context, window catalog.Window, pages int) (*recommend.Snapshot, error)
	Titles() ([]string, error)
	Genres(ctx context.Context) ([]string, error)
	Status() recommend.Status
	Ready() bool
	Config() *recommend.Config
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// DefaultWindow fills fields a rebuild request leaves out.
	DefaultWindow catalog.Window

	// DefaultPages is used when a rebuild request omits pages.
	DefaultPages int

	// BuildTimeout bounds rebuilds triggered over HTTP.
	BuildTimeout time.Duration

	// Performance, when set, is reported by the catalog status endpoint.
	Performance *middleware.PerformanceMonitor
}

// Handler serves the recommendation API and the browse page.
type Handler struct {
	engine        Recommender
	defaultWindow catalog.Window
	defaultPages  int
	buildTimeout  time.Duration
	perfMon       *middleware.PerformanceMonitor
	browse        *template.Template
	startTime     time.Time
}

// NewHandler creates a handler over engine.
//
//nolint:gocritic // hugeParam: options passed by value at construction
func NewHandler(engine Recommender, opts HandlerOptions) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("recommender is required")
	}
	if opts.DefaultPages <= 0 {
		opts.DefaultPages = 1
	}
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = DefaultBuildTimeout
	}

	tmpl, err := parseBrowseTemplate()
	if err != nil {
		return nil, err
	}

	return &Handler{
		engine:        engine,
		defaultWindow: opts.DefaultWindow,
		defaultPages:  opts.DefaultPages,
		buildTimeout:  opts.BuildTimeout,
		perfMon:       opts.Performance,
		browse:        tmpl,
		startTime:     time.Now(),
	}, nil
}
