// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package main is the entry point for the Reelmatch server.

Reelmatch fetches a window of movies from TMDB, turns each title, synopsis
and genre list into a vector and answers "movies like this one" queries by
cosine similarity, optionally blended with rating and vote count.

# Application Architecture

	RootSupervisor ("reelmatch")
	├── CatalogSupervisor ("catalog-layer")
	│   └── CatalogService (startup build, scheduled refresh)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Catalog provider: TMDB client behind a circuit breaker
 4. Vectorizer: TF-IDF or a remote embedding endpoint
 5. Recommendation engine
 6. Supervisor tree and HTTP server

The HTTP server starts before the first snapshot exists. Until then the
readiness probe and every query endpoint answer 503.

# Configuration

Priority: Environment variables > Config file > Defaults

	TMDB_API_TOKEN=...             # required
	HTTP_PORT=8080
	CATALOG_RELEASE_FROM=2000-01-01
	CATALOG_RELEASE_TO=2025-12-31
	CATALOG_PAGES=8
	VECTORIZER_STRATEGY=tfidf      # or embedding (needs EMBEDDING_API_KEY)
	RANKING_MODE=blended           # or similarity
	CONFIG_PATH=/etc/reelmatch/config.yaml

# Endpoints

	GET  /                              HTML browse page
	GET  /api/v1/recommendations        ?title=&genres=&top_n=
	GET  /api/v1/catalog                snapshot status
	GET  /api/v1/catalog/titles
	GET  /api/v1/catalog/genres
	POST /api/v1/catalog/rebuild
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics                       Prometheus

# Shutdown

SIGINT or SIGTERM cancels the root context. The HTTP server drains for
server.shutdown_timeout and any service that outlives it is logged.
*/
package main
