// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/middleware"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// maxRebuildBodySize bounds the rebuild request body.
const maxRebuildBodySize = 16 * 1024

// RebuildRequest is the body of POST /api/v1/catalog/rebuild. Omitted
// fields take the configured defaults.
type RebuildRequest struct {
	From         string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Pages        *int   `json:"pages" validate:"omitempty,min=1,max=500"`
	MinVoteCount *int   `json:"min_vote_count" validate:"omitempty,min=0"`
	SortBy       string `json:"sort_by" validate:"omitempty,oneof=popularity.desc popularity.asc vote_average.desc vote_average.asc vote_count.desc vote_count.asc primary_release_date.desc primary_release_date.asc revenue.desc"`
}

// window merges the request over defaults. Dates were validated already.
//
//nolint:gocritic // hugeParam: defaults passed by value
func (req *RebuildRequest) window(defaults catalog.Window, defaultPages int) (catalog.Window, int) {
	w := defaults
	if req.From != "" {
		w.From, _ = time.Parse(catalog.DateLayout, req.From)
	}
	if req.To != "" {
		w.To, _ = time.Parse(catalog.DateLayout, req.To)
	}
	if req.MinVoteCount != nil {
		w.MinVoteCount = *req.MinVoteCount
	}
	if req.SortBy != "" {
		w.SortBy = req.SortBy
	}

	pages := defaultPages
	if req.Pages != nil {
		pages = *req.Pages
	}
	return w, pages
}

// CatalogStatus is the body of GET /api/v1/catalog.
type CatalogStatus struct {
	recommend.Status
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Endpoints     []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// Catalog handles GET /api/v1/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	status := CatalogStatus{
		Status:        h.engine.Status(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.perfMon != nil {
		status.Endpoints = h.perfMon.GetStats()
	}
	NewResponseWriter(w, r).SuccessWithMeta(status, &APIMeta{SnapshotVersion: status.Version})
}

// CatalogTitles handles GET /api/v1/catalog/titles.
func (h *Handler) CatalogTitles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	titles, err := h.engine.Titles()
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	count := len(titles)
	rw.SuccessWithMeta(titles, &APIMeta{Count: &count})
}

// CatalogGenres handles GET /api/v1/catalog/genres. The list starts with
// the "All" pseudo-genre followed by the genre names, sorted.
func (h *Handler) CatalogGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	genres, err := h.engine.Genres(r.Context())
	if err != nil {
		rw.ExternalServiceError("catalog provider", err)
		return
	}

	out := make([]string, 0, len(genres)+1)
	out = append(out, AllGenres)
	out = append(out, genres...)
	count := len(out)
	rw.SuccessWithMeta(out, &APIMeta{Count: &count})
}

// CatalogRebuild handles POST /api/v1/catalog/rebuild. The rebuild runs to
// completion even if the client disconnects, bounded by the build timeout.
func (h *Handler) CatalogRebuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RebuildRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRebuildBodySize+1))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return
	}
	if len(body) > maxRebuildBodySize {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			rw.BadRequest("Request body must be a JSON object")
			return
		}
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	window, pages := req.window(h.defaultWindow, h.defaultPages)
	if err := window.Validate(); err != nil {
		rw.ValidationError(validation.NewRequestValidationError("window", "range", window.String(), err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.buildTimeout)
	defer cancel()

	logging.Ctx(r.Context()).Info().
		Str("window", window.String()).
		Int("pages", pages).
		Msg("Catalog rebuild requested")

	snap, err := h.engine.Rebuild(ctx, window, pages)
	if err != nil {
		h.respondRebuildError(rw, err)
		return
	}

	rw.SuccessWithMeta(h.engine.Status(), &APIMeta{SnapshotVersion: snap.Version()})
}

// respondRebuildError maps rebuild failures. The previous snapshot, if
// any, is still serving when this runs.
func (h *Handler) respondRebuildError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrEmptyCatalog):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeEmptyCatalog, "The selected window contains no movies")
	case errors.Is(err, catalog.ErrFetch):
		rw.ExternalServiceError("catalog provider", err)
	case errors.Is(err, recommend.ErrVectorization):
		rw.ExternalServiceError("vectorizer", err)
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeExternalServiceFail, "Catalog rebuild timed out")
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Catalog rebuild failed")
		rw.InternalError("Catalog rebuild failed")
	}
}
