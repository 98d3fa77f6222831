// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
tmdb_client.go - TMDB REST client

Client Features:
  - Bearer token authentication (v4 read access token)
  - Client side pacing with a token bucket (golang.org/x/time/rate)
  - Automatic HTTP 429 handling with exponential backoff and Retry-After
  - Page 1 first to learn total_pages, remaining pages fetched concurrently
    with a bounded errgroup and reassembled in page order
  - Genre map cached for tmdb.genre_cache_ttl

Endpoints:
  - GET /discover/movie
  - GET /genre/movie/list
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads at most maxErrorBodySize bytes for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Metric endpoint labels.
const (
	endpointDiscover = "discover"
	endpointGenres   = "genres"
)

// discoverResponse is the /discover/movie payload.
type discoverResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	GenreIDs    []int   `json:"genre_ids"`
}

// genreListResponse is the /genre/movie/list payload.
type genreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// TMDBClient implements Provider against The Movie Database API.
//
// Thread Safety: safe for concurrent use.
type TMDBClient struct {
	baseURL         string
	apiToken        string
	language        string
	client          *http.Client
	limiter         *rate.Limiter
	maxRetries      int           // Maximum retries for rate limiting
	retryBaseDelay  time.Duration // Base delay for exponential backoff
	pageConcurrency int
	genres          *cache.LRU[GenreMap]
	logger          zerolog.Logger
}

// NewTMDBClient creates a client from cfg. The API token is injected here
// and never read from anywhere else; an empty token returns an error
// wrapping config.ErrMissingCredential.
func NewTMDBClient(cfg *config.TMDBConfig) (*TMDBClient, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("tmdb client: api token: %w", config.ErrMissingCredential)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.PageConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	genreTTL := cfg.GenreCacheTTL
	if genreTTL <= 0 {
		genreTTL = 24 * time.Hour
	}

	return &TMDBClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		language: cfg.Language,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:         rate.NewLimiter(limit, burst),
		maxRetries:      cfg.MaxRetries,
		retryBaseDelay:  cfg.RetryBaseDelay,
		pageConcurrency: concurrency,
		genres:          cache.NewLRU[GenreMap](8, genreTTL),
		logger:          logging.WithComponent("tmdb"),
	}, nil
}

// Fetch implements Provider.
func (c *TMDBClient) Fetch(ctx context.Context, window Window, pages int) ([]Item, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("invalid window: %w", err)
	}
	if pages < 1 || pages > MaxPages {
		return nil, fmt.Errorf("pages must be between 1 and %d, got %d", MaxPages, pages)
	}

	genres, err := c.Genres(ctx)
	if err != nil {
		return nil, err
	}

	first, err := c.discoverPage(ctx, window, 1)
	if err != nil {
		return nil, err
	}

	last := pages
	if first.TotalPages < last {
		last = first.TotalPages
	}

	results := make([][]tmdbMovie, max(last, 1))
	results[0] = first.Results

	if last > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.pageConcurrency)
		for page := 2; page <= last; page++ {
			g.Go(func() error {
				resp, err := c.discoverPage(gctx, window, page)
				if err != nil {
					return err
				}
				results[page-1] = resp.Results
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	raw := make([]Item, 0, len(results)*20)
	for _, pageResults := range results {
		for i := range pageResults {
			raw = append(raw, pageResults[i].toItem(genres))
		}
	}

	items, dropped := Dedupe(raw)
	metrics.RecordDuplicatesDropped(dropped)

	c.logger.Info().
		Str("window", window.String()).
		Int("pages", last).
		Int("items", len(items)).
		Int("dropped", dropped).
		Msg("Fetched catalog listing")

	return items, nil
}

// Genres implements Provider. The map is cached per language.
func (c *TMDBClient) Genres(ctx context.Context) (GenreMap, error) {
	key := "genres:" + c.language
	if cached, ok := c.genres.Get(key); ok {
		return cached, nil
	}

	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}

	var resp genreListResponse
	if err := c.getJSON(ctx, endpointGenres, "/genre/movie/list", params, &resp); err != nil {
		return nil, err
	}

	genres := make(GenreMap, len(resp.Genres))
	for _, g := range resp.Genres {
		genres[g.ID] = g.Name
	}
	c.genres.Add(key, genres)

	return genres, nil
}

// discoverPage fetches one page of /discover/movie for window.
//
//nolint:gocritic // hugeParam
func (c *TMDBClient) discoverPage(ctx context.Context, window Window, page int) (*discoverResponse, error) {
	params := url.Values{}
	params.Set("primary_release_date.gte", window.From.Format(DateLayout))
	params.Set("primary_release_date.lte", window.To.Format(DateLayout))
	params.Set("vote_count.gte", strconv.Itoa(window.MinVoteCount))
	params.Set("page", strconv.Itoa(page))
	if window.SortBy != "" {
		params.Set("sort_by", window.SortBy)
	}
	lang := window.Language
	if lang == "" {
		lang = c.language
	}
	if lang != "" {
		params.Set("language", lang)
	}

	var resp discoverResponse
	if err := c.getJSON(ctx, endpointDiscover, "/discover/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("discover page %d: %w", page, err)
	}
	return &resp, nil
}

// getJSON performs a GET against path and decodes the JSON body into result.
// Every failure wraps ErrFetch.
func (c *TMDBClient) getJSON(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		metrics.RecordCatalogFetch(endpoint, 0, time.Since(start))
		return fmt.Errorf("%w: %s request: %w", ErrFetch, endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordCatalogFetch(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%w: %s request failed with status %d: %s", ErrFetch, endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", ErrFetch, endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP GET with client side pacing and
// automatic handling of HTTP 429 (exponential backoff, Retry-After honoured).
// The context is used for cancellation during waits.
func (c *TMDBClient) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		// 1s, 2s, 4s, 8s, 16s with the default base delay
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		c.logger.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by TMDB, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// toItem converts a raw listing to an Item, resolving genre ids.
func (m *tmdbMovie) toItem(genres GenreMap) Item {
	return Item{
		ID:        m.ID,
		Title:     m.Title,
		Synopsis:  m.Overview,
		Year:      YearFromDate(m.ReleaseDate),
		Rating:    m.VoteAverage,
		VoteCount: m.VoteCount,
		Genres:    genres.Resolve(m.GenreIDs),
	}
}
