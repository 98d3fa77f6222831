// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package metrics provides Prometheus metrics for Reelmatch.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation Metrics:
  - recommend_requests_total: Queries by outcome (counter)
    Labels: outcome (ok, not_found, not_ready, error)
  - recommend_duration_seconds: Query latency (histogram)
  - recommend_cache_hits_total / recommend_cache_misses_total: Result cache (counter)

Snapshot Metrics:
  - snapshot_builds_total: Builds by result (counter)
    Labels: result (success, failure)
  - snapshot_build_duration_seconds: Fetch plus vectorize time (histogram)
  - snapshot_items: Items in the active snapshot (gauge)
  - snapshot_version: Active snapshot version (gauge)
  - snapshot_degenerate_vectors: Items with an all-zero vector (gauge)

Catalog Provider Metrics:
  - catalog_fetch_requests_total: Provider calls (counter)
    Labels: endpoint, status_code
  - catalog_fetch_duration_seconds: Provider latency (histogram)
  - catalog_duplicates_dropped_total: Titles removed by dedupe (counter)
  - embedding_requests_total: Embedding batches (counter)
    Labels: status

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

# Usage

	start := time.Now()
	result, err := engine.Recommend(ctx, q)
	metrics.RecordRecommendation(metrics.OutcomeOK, time.Since(start))
*/
package metrics
