// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// EmptyResultMessage is shown when a known title has no matches after filtering.
const EmptyResultMessage = "No similar movies found. Try another movie or remove the genre filter."

//go:embed templates/browse.html
var templateFS embed.FS

func parseBrowseTemplate() (*template.Template, error) {
	tmpl, err := template.New("browse.html").Funcs(template.FuncMap{
		"join": strings.Join,
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
	}).ParseFS(templateFS, "templates/browse.html")
	if err != nil {
		return nil, fmt.Errorf("parse browse template: %w", err)
	}
	return tmpl, nil
}

// browsePage is the data rendered by the browse template.
type browsePage struct {
	Ready        bool
	Version      uint64
	Items        int
	Titles       []string
	Genres       []string
	Title        string
	Genre        string
	TopN         int
	MaxTopN      int
	Result       *recommend.Result
	Error        string
	EmptyMessage string
}

// Browse renders the movie picker at "/". With a title in the query it
// also renders recommendations for that title.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	st := h.engine.Status()
	page := browsePage{
		Ready:        st.Ready,
		Version:      st.Version,
		Items:        st.Items,
		TopN:         cfg.Limits.DefaultTopN,
		MaxTopN:      cfg.Limits.MaxTopN,
		EmptyMessage: EmptyResultMessage,
	}

	status := http.StatusOK
	if st.Ready {
		h.fillBrowsePage(r, &page)
	} else {
		status = http.StatusServiceUnavailable
	}

	var buf bytes.Buffer
	if err := h.browse.Execute(&buf, page); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render browse page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fillBrowsePage(r *http.Request, page *browsePage) {
	titles, err := h.engine.Titles()
	if err != nil {
		page.Error = "The catalog is not available."
		return
	}
	page.Titles = titles

	genres, err := h.engine.Genres(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Genre list unavailable for browse page")
	}
	page.Genres = append([]string{AllGenres}, genres...)
	page.Genre = AllGenres

	if strings.TrimSpace(r.URL.Query().Get("title")) == "" {
		return
	}

	req, verr := parseRecommendRequest(r, page.TopN)
	if verr != nil {
		page.Error = verr.Error()
		return
	}
	page.Title = req.Title
	page.TopN = req.TopN
	if len(req.Genres) > 0 {
		page.Genre = req.Genres[0]
	}

	result, err := h.engine.Recommend(r.Context(), req.Query())
	if err != nil {
		if errors.Is(err, recommend.ErrNotReady) {
			page.Error = "The catalog is still loading."
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Browse recommendation failed")
		page.Error = "Recommendation failed."
		return
	}
	page.Result = result
}
