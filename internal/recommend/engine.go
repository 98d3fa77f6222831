// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Engine owns the current Snapshot and rebuilds it from a catalog provider.
// It is safe for concurrent use.
//
// Queries load the current snapshot through an atomic pointer and never
// block on a rebuild. Rebuilds are serialized; each one fetches a fresh
// catalog, builds a wholly new Snapshot and swaps it in. A failed rebuild
// leaves the previous snapshot serving.
type Engine struct {
	config     *Config
	provider   catalog.Provider
	vectorizer Vectorizer
	logger     zerolog.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	// Rebuild state
	buildMu     sync.Mutex
	lastWindow  catalog.Window
	lastPages   int
	hasWindow   bool
	lastErr     error
	lastAttempt time.Time
	statusMu    sync.RWMutex

	// Result cache keyed by snapshot version, nil when disabled
	results *cache.LRU[*Result]
}

// Status describes the engine for health and catalog endpoints.
type Status struct {
	Ready       bool          `json:"ready"`
	Version     uint64        `json:"version"`
	Items       int           `json:"items"`
	Dimension   int           `json:"dimension"`
	Degenerate  int           `json:"degenerate_vectors"`
	Matrix      bool          `json:"precomputed_matrix"`
	Vectorizer  string        `json:"vectorizer"`
	Window      string        `json:"window,omitempty"`
	BuiltAt     *time.Time    `json:"built_at,omitempty"`
	Ranking     RankingConfig `json:"ranking"`
	LastAttempt *time.Time    `json:"last_attempt,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
}

// NewEngine creates an engine with no snapshot. Call Rebuild before querying.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, provider catalog.Provider, vectorizer Vectorizer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, errors.New("catalog provider is required")
	}
	if vectorizer == nil {
		return nil, errors.New("vectorizer is required")
	}

	e := &Engine{
		config:     cfg,
		provider:   provider,
		vectorizer: vectorizer,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.results = cache.NewLRU[*Result](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Snapshot returns the current snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Ready reports whether a snapshot is available.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Rebuild fetches pages of window from the provider, builds a new snapshot
// and publishes it. Errors wrap catalog.ErrFetch, ErrEmptyCatalog or
// ErrVectorization; on error the current snapshot is unchanged.
//
//nolint:gocritic // hugeParam: window passed by value for immutability
func (e *Engine) Rebuild(ctx context.Context, window catalog.Window, pages int) (*Snapshot, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	logger := e.logger.With().Str("window", window.String()).Int("pages", pages).Logger()
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		logger = logger.With().Str("correlation_id", id).Logger()
	}
	start := time.Now()

	snap, err := e.build(ctx, window, pages)
	e.recordAttempt(start, err)
	if err != nil {
		metrics.RecordSnapshotBuild(time.Since(start), 0, 0, 0, err)
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Catalog rebuild failed, keeping previous snapshot")
		return nil, err
	}

	snap.version = e.version.Add(1)
	snap.window = window.String()
	previous := e.current.Swap(snap)

	e.lastWindow = window
	e.lastPages = pages
	e.hasWindow = true

	if e.results != nil {
		e.results.Clear()
	}

	metrics.RecordSnapshotBuild(time.Since(start), snap.Len(), snap.DegenerateCount(), snap.version, nil)

	event := logger.Info().
		Uint64("version", snap.version).
		Int("items", snap.Len()).
		Int("dimension", snap.Dimension()).
		Int("degenerate", snap.DegenerateCount()).
		Bool("matrix", snap.HasMatrix()).
		Str("vectorizer", snap.VectorizerName()).
		Dur("duration", time.Since(start))
	if previous != nil {
		event = event.Uint64("replaced_version", previous.version)
	}
	event.Msg("Catalog snapshot published")

	return snap, nil
}

//nolint:gocritic // hugeParam: window passed by value for immutability
func (e *Engine) build(ctx context.Context, window catalog.Window, pages int) (*Snapshot, error) {
	items, err := e.provider.Fetch(ctx, window, pages)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	cat := catalog.New(items)
	snap, err := Build(ctx, cat, e.vectorizer, e.config)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}

// Refresh rebuilds with the window and page count of the last rebuild.
// It returns ErrNotReady if Rebuild has never succeeded.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	e.buildMu.Lock()
	window, pages, ok := e.lastWindow, e.lastPages, e.hasWindow
	e.buildMu.Unlock()

	if !ok {
		return nil, ErrNotReady
	}
	return e.Rebuild(ctx, window, pages)
}

func (e *Engine) recordAttempt(at time.Time, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.lastAttempt = at.UTC()
	e.lastErr = err
}

// Recommend answers q against the current snapshot. TopN above the
// configured maximum is clamped. It returns ErrNotReady before the first
// successful build; an unknown title is a Result with Found == false.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	snap := e.current.Load()
	if snap == nil {
		metrics.RecordRecommendation(metrics.OutcomeNotReady, time.Since(start))
		return nil, ErrNotReady
	}

	if q.TopN > e.config.Limits.MaxTopN {
		q.TopN = e.config.Limits.MaxTopN
	}

	key := q.cacheKey(snap.version)
	if e.results != nil {
		if cached, ok := e.results.Get(key); ok {
			metrics.RecordRecommendCache(true)
			metrics.RecordRecommendation(outcomeOf(cached), time.Since(start))
			out := cached.clone()
			out.Genres = append([]string(nil), q.Genres...)
			return out, nil
		}
		metrics.RecordRecommendCache(false)
	}

	result := snap.Recommend(q)
	e.cacheResult(snap, key, &result)

	metrics.RecordRecommendation(outcomeOf(&result), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("title", q.Title).
		Strs("genres", q.Genres).
		Int("top_n", q.TopN).
		Bool("found", result.Found).
		Int("returned", len(result.Items)).
		Uint64("version", snap.version).
		Msg("Recommendation served")

	return &result, nil
}

// cacheResult stores result unless a rebuild has published a newer
// snapshot since snap was loaded; that entry could never be read again.
func (e *Engine) cacheResult(snap *Snapshot, key string, result *Result) {
	if e.results == nil || e.current.Load() != snap {
		return
	}
	e.results.Add(key, result.clone())
	// Rebuild clears after it swaps, so only a swap between the check
	// above and Add can leave the entry behind.
	if e.current.Load() != snap {
		e.results.Remove(key)
	}
}

func outcomeOf(r *Result) string {
	if !r.Found {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeOK
}

// Titles returns the current catalog titles, sorted.
func (e *Engine) Titles() ([]string, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Catalog().Titles(), nil
}

// Genres returns the provider's genre names, sorted. If the provider fails
// and a snapshot exists, the genres used by the current catalog are
// returned instead.
func (e *Engine) Genres(ctx context.Context) ([]string, error) {
	genres, err := e.provider.Genres(ctx)
	if err == nil {
		return genres.Names(), nil
	}

	snap := e.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("genre list: %w", err)
	}
	e.logger.Warn().Err(err).Msg("Genre list unavailable, using catalog genres")
	return snap.Catalog().Genres(), nil
}

// Status returns a point-in-time description of the engine.
func (e *Engine) Status() Status {
	st := Status{
		Vectorizer: e.vectorizer.Name(),
		Ranking:    e.config.Ranking,
	}

	if snap := e.current.Load(); snap != nil {
		builtAt := snap.BuiltAt()
		st.Ready = true
		st.Version = snap.version
		st.Items = snap.Len()
		st.Dimension = snap.Dimension()
		st.Degenerate = snap.DegenerateCount()
		st.Matrix = snap.HasMatrix()
		st.Window = snap.window
		st.BuiltAt = &builtAt
		st.Ranking = snap.Ranking()
	}

	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	if !e.lastAttempt.IsZero() {
		at := e.lastAttempt
		st.LastAttempt = &at
	}
	if e.lastErr != nil {
		st.LastError = e.lastErr.Error()
	}
	return st
}
