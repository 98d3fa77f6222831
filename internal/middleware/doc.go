// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package middleware provides HTTP middleware components for the API router.

All components use the chi signature func(http.Handler) http.Handler and
are mounted in internal/api alongside chi's own RealIP and Recoverer.

Key Components:

  - Request ID: UUID-based request tracking, echoed in X-Request-ID and
    stored in the context for internal/logging
  - Prometheus Metrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: pooled gzip writers for JSON and HTML responses
  - Performance Monitor: sliding-window latency percentiles per endpoint,
    reported by the catalog status endpoint, with slow request logging

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression)

Route patterns are only known after chi has routed the request, so the
metrics middlewares read them after calling the next handler. Requests no
route matched are labelled "unmatched".

Thread Safety:

All middleware components are safe for concurrent use. The performance
monitor guards its window with a sync.RWMutex; Prometheus collectors are
internally synchronized.
*/
package middleware
