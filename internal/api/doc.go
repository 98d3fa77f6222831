// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api provides the HTTP interface of the recommendation service.

Routes (chi):

	GET  /api/v1/recommendations?title=&genres=a,b&top_n=   recommend
	GET  /api/v1/catalog                                     snapshot status
	GET  /api/v1/catalog/titles                              sorted titles
	GET  /api/v1/catalog/genres                              "All" + sorted genres
	POST /api/v1/catalog/rebuild                             rebuild with a new window
	GET  /api/v1/health/live, /api/v1/health/ready           probes
	GET  /metrics                                            prometheus
	GET  /                                                   browse page

Response Format:

All JSON endpoints use the APIResponse envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Errors carry a machine-readable code:

	VALIDATION_ERROR         400  malformed or out-of-range input
	SERVICE_UNAVAILABLE      503  no catalog snapshot yet
	EMPTY_CATALOG            422  rebuild window matched no movies
	EXTERNAL_SERVICE_FAILED  502  catalog provider or vectorizer failed

An unknown title is not an error: recommendations answer 200 with
found=false and an empty item list.

Middleware:

Every route gets request IDs, RealIP, Recoverer, CORS and Prometheus
instrumentation. API routes are rate limited per client IP with
go-chi/httprate, and rebuilds have a separate, stricter limit.
*/
package api
