// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// CircuitBreakerProvider wraps a Provider with the circuit breaker pattern
// so a failing catalog API is not hammered by refreshes and manual rebuilds.
//
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// Rejections while open wrap ErrFetch like any other provider failure.
type CircuitBreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[interface{}]
	name     string
}

// NewCircuitBreakerProvider wraps provider. name labels logs and metrics.
func NewCircuitBreakerProvider(provider Provider, name string) *CircuitBreakerProvider {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Only upstream failures count. Caller cancellation and invalid
		// arguments do not.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrFetch) || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerProvider{
		provider: provider,
		cb:       cb,
		name:     name,
	}
}

// execute runs fn through the breaker and records the outcome.
func (p *CircuitBreakerProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := p.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", p.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		counts := p.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(0)
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// State returns the breaker state as "closed", "half-open" or "open".
func (p *CircuitBreakerProvider) State() string {
	return stateToString(p.cb.State())
}

// Fetch implements Provider with circuit breaker protection.
//
//nolint:gocritic // hugeParam
func (p *CircuitBreakerProvider) Fetch(ctx context.Context, window Window, pages int) ([]Item, error) {
	items, err := castResult[[]Item](p.execute(func() (interface{}, error) {
		items, err := p.provider.Fetch(ctx, window, pages)
		if err != nil {
			return nil, err
		}
		return &items, nil
	}))
	if err != nil {
		return nil, err
	}
	return *items, nil
}

// Genres implements Provider with circuit breaker protection.
func (p *CircuitBreakerProvider) Genres(ctx context.Context) (GenreMap, error) {
	genres, err := castResult[GenreMap](p.execute(func() (interface{}, error) {
		genres, err := p.provider.Genres(ctx)
		if err != nil {
			return nil, err
		}
		return &genres, nil
	}))
	if err != nil {
		return nil, err
	}
	return *genres, nil
}
