// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelmatch/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	if router.handler.perfMon != nil {
		r.Use(router.handler.perfMon.Middleware)
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Metrics are scraped uncompressed unless the scraper asks for gzip,
	// which promhttp handles itself.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compression)

		// ========================
		// Health Endpoints
		// ========================
		r.Route("/api/v1/health", func(r chi.Router) {
			r.Use(APISecurityHeaders())
			r.NotFound(notFound)
			r.MethodNotAllowed(methodNotAllowed)
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		// ========================
		// Recommendation API
		// ========================
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(APISecurityHeaders())
			r.NotFound(notFound)
			r.MethodNotAllowed(methodNotAllowed)

			r.Get("/recommendations", router.handler.Recommend)

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", router.handler.Catalog)
				r.Get("/titles", router.handler.CatalogTitles)
				r.Get("/genres", router.handler.CatalogGenres)
				r.With(router.chiMiddleware.RateLimitRebuild()).Post("/rebuild", router.handler.CatalogRebuild)
			})
		})

		// ========================
		// Browse Page
		// ========================
		r.With(router.chiMiddleware.RateLimit()).Get("/", router.handler.Browse)
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}
