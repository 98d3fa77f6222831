// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelmatch/internal/metrics"
)

func newTestRouter(mw ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := newTestRouter(PrometheusMetrics)

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/movies/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/movies/1", "/movies/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d, want 418", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("api_requests_total delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != 0 {
		t.Errorf("active requests = %v, want 0 after completion", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	r := newTestRouter(PrometheusMetrics)

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/path", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
}

func TestMetricsResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = w.Write([]byte("body"))
	w.WriteHeader(http.StatusInternalServerError)

	if w.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 after implicit header", w.statusCode)
	}
	if w.Unwrap() != rec {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}

func TestCompression(t *testing.T) {
	r := newTestRouter(Compression)

	tests := []struct {
		name         string
		method       string
		acceptGzip   bool
		wantEncoding string
	}{
		{"gzip accepted", http.MethodGet, true, "gzip"},
		{"gzip not accepted", http.MethodGet, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/movies/7", nil)
			if tt.acceptGzip {
				req.Header.Set("Accept-Encoding", "gzip, deflate")
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if got := rec.Header().Get("Content-Encoding"); got != tt.wantEncoding {
				t.Fatalf("Content-Encoding = %q, want %q", got, tt.wantEncoding)
			}
			if rec.Code != http.StatusTeapot {
				t.Errorf("status = %d, want 418", rec.Code)
			}

			body := io.Reader(rec.Body)
			if tt.wantEncoding == "gzip" {
				gz, err := gzip.NewReader(rec.Body)
				if err != nil {
					t.Fatalf("gzip.NewReader() error = %v", err)
				}
				body = gz
			}
			data, _ := io.ReadAll(body)
			if string(data) != "short and stout" {
				t.Errorf("body = %q", data)
			}
		})
	}
}

func TestPerformanceMonitor(t *testing.T) {
	pm := NewPerformanceMonitor(3, time.Hour)
	r := newTestRouter(pm.Middleware)

	for _, path := range []string{"/movies/1", "/movies/2", "/ok", "/movies/3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := len(pm.GetRecentMetrics(10)); got != 3 {
		t.Errorf("window size = %d, want 3", got)
	}

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("GetStats() returned %d endpoints, want 2", len(stats))
	}
	if stats[0].Endpoint != "GET /movies/{id}" || stats[0].RequestCount != 3 || stats[0].WindowCount != 2 {
		t.Errorf("stats[0] = %+v", stats[0])
	}
	if stats[1].Endpoint != "GET /ok" || stats[1].RequestCount != 1 {
		t.Errorf("stats[1] = %+v", stats[1])
	}

	recent := pm.GetRecentMetrics(1)
	if recent[0].StatusCode != http.StatusTeapot {
		t.Errorf("recent status = %d, want 418", recent[0].StatusCode)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want int64
	}{
		{0, 1},
		{0.5, 5},
		{0.99, 9},
		{1, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}
