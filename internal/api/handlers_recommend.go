// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// AllGenres is the pseudo-genre meaning "no filter".
const AllGenres = "All"

// RecommendRequest holds the parsed query parameters of a recommendation.
type RecommendRequest struct {
	Title  string   `query:"title" validate:"notblank,max=300"`
	Genres []string `query:"genres" validate:"max=50,dive,max=100"`
	TopN   int      `query:"top_n" validate:"min=0"`
}

// Query converts the request to an engine query.
func (req *RecommendRequest) Query() recommend.Query {
	return recommend.Query{Title: req.Title, Genres: req.Genres, TopN: req.TopN}
}

// parseRecommendRequest reads title, genres and top_n from the URL. A
// missing top_n takes defaultTopN. Genres are comma separated; "All" is
// dropped so that selecting it disables the filter.
func parseRecommendRequest(r *http.Request, defaultTopN int) (*RecommendRequest, *validation.RequestValidationError) {
	q := r.URL.Query()
	req := &RecommendRequest{
		Title:  strings.TrimSpace(q.Get("title")),
		Genres: parseGenres(q["genres"]),
		TopN:   defaultTopN,
	}

	if raw := strings.TrimSpace(q.Get("top_n")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, validation.NewRequestValidationError("top_n", "int", raw, "top_n must be an integer")
		}
		req.TopN = n
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// parseGenres splits every value on commas, trims, drops blanks and the
// "All" pseudo-genre.
func parseGenres(values []string) []string {
	var genres []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			g := strings.TrimSpace(part)
			if g == "" || strings.EqualFold(g, AllGenres) {
				continue
			}
			genres = append(genres, g)
		}
	}
	return genres
}

// Recommend handles GET /api/v1/recommendations.
//
// An unknown title is not an error: the response is 200 with found=false
// and an empty item list.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, verr := parseRecommendRequest(r, h.engine.Config().Limits.DefaultTopN)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	result, err := h.engine.Recommend(r.Context(), req.Query())
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}

	count := len(result.Items)
	rw.SuccessWithMeta(result, &APIMeta{Count: &count, SnapshotVersion: result.SnapshotVersion})
}

// respondEngineError maps engine errors onto API errors.
func (h *Handler) respondEngineError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		rw.ServiceUnavailable("Catalog is still loading, try again shortly")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		rw.InternalError("Recommendation failed")
	}
}
