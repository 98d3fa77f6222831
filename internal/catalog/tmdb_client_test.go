// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/config"
)

const testToken = "test-read-token"

func testTMDBConfig(baseURL string) *config.TMDBConfig {
	return &config.TMDBConfig{
		BaseURL:           baseURL,
		APIToken:          testToken,
		Language:          "en-US",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
		RequestsPerSecond: 1000,
		Burst:             100,
		PageConcurrency:   3,
		GenreCacheTTL:     time.Hour,
	}
}

func testWindow() Window {
	from, _ := time.Parse(DateLayout, "2000-01-01")
	to, _ := time.Parse(DateLayout, "2025-12-31")
	return Window{From: from, To: to, MinVoteCount: 500, SortBy: "vote_average.desc"}
}

// fakeTMDB serves /genre/movie/list and /discover/movie with totalPages
// pages of two movies each. Page p holds "Movie p-1" and "Movie p-2"; the
// last page repeats a title from page 1 to exercise dedupe.
type fakeTMDB struct {
	totalPages int

	mu            sync.Mutex
	discoverCalls []discoverCall
	genreCalls    int32
}

type discoverCall struct {
	page     string
	votes    string
	from, to string
	sortBy   string
	language string
}

func (f *fakeTMDB) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.genreCalls, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":80,"name":"Crime"},{"id":18,"name":"Drama"}]}`))
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		q := r.URL.Query()
		f.mu.Lock()
		f.discoverCalls = append(f.discoverCalls, discoverCall{
			page:     q.Get("page"),
			votes:    q.Get("vote_count.gte"),
			from:     q.Get("primary_release_date.gte"),
			to:       q.Get("primary_release_date.lte"),
			sortBy:   q.Get("sort_by"),
			language: q.Get("language"),
		})
		f.mu.Unlock()

		page, _ := strconv.Atoi(q.Get("page"))
		results := []tmdbMovie{
			{ID: int64(page*10 + 1), Title: fmt.Sprintf("Movie %d-1", page), Overview: "a heist", ReleaseDate: "2001-02-03", VoteAverage: 7.5, VoteCount: 900, GenreIDs: []int{80, 28}},
			{ID: int64(page*10 + 2), Title: fmt.Sprintf("Movie %d-2", page), Overview: "", ReleaseDate: "", VoteAverage: 6.1, VoteCount: 600, GenreIDs: []int{18, 999}},
		}
		if page == f.totalPages && page > 1 {
			results[1].Title = "Movie 1-1"
		}
		_ = json.NewEncoder(w).Encode(discoverResponse{Page: page, Results: results, TotalPages: f.totalPages})
	})
	return mux
}

func TestNewTMDBClient_MissingToken(t *testing.T) {
	cfg := testTMDBConfig("http://localhost")
	cfg.APIToken = ""

	client, err := NewTMDBClient(cfg)
	if client != nil {
		t.Error("NewTMDBClient() returned a client without a token")
	}
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Errorf("NewTMDBClient() error = %v, want ErrMissingCredential", err)
	}
}

func TestNewTMDBClient_Defaults(t *testing.T) {
	client, err := NewTMDBClient(&config.TMDBConfig{BaseURL: "https://api.example/3/", APIToken: "x"})
	if err != nil {
		t.Fatalf("NewTMDBClient() error = %v", err)
	}
	if client.baseURL != "https://api.example/3" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
	if client.client.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", client.client.Timeout)
	}
	if client.pageConcurrency != 1 {
		t.Errorf("pageConcurrency = %d, want 1", client.pageConcurrency)
	}
}

func TestTMDBClient_Fetch(t *testing.T) {
	fake := &fakeTMDB{totalPages: 5}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client, err := NewTMDBClient(testTMDBConfig(server.URL))
	if err != nil {
		t.Fatalf("NewTMDBClient() error = %v", err)
	}

	items, err := client.Fetch(context.Background(), testWindow(), 4)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// 4 pages of 2 movies, assembled in page order.
	if len(items) != 8 {
		t.Fatalf("Fetch() returned %d items, want 8", len(items))
	}
	for i, it := range items {
		page := i/2 + 1
		want := fmt.Sprintf("Movie %d-%d", page, i%2+1)
		if it.Title != want {
			t.Errorf("items[%d].Title = %q, want %q", i, it.Title, want)
		}
	}

	first := items[0]
	if first.Year != "2001" || first.Rating != 7.5 || first.VoteCount != 900 || first.Synopsis != "a heist" {
		t.Errorf("items[0] = %+v", first)
	}
	if len(first.Genres) != 2 || first.Genres[0] != "Crime" || first.Genres[1] != "Action" {
		t.Errorf("items[0].Genres = %v, want [Crime Action]", first.Genres)
	}
	if got := items[1].Genres; len(got) != 1 || got[0] != "Drama" {
		t.Errorf("items[1].Genres = %v, want unknown id skipped", got)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.discoverCalls) != 4 {
		t.Errorf("discover calls = %d, want 4", len(fake.discoverCalls))
	}
	call := fake.discoverCalls[0]
	if call.page != "1" || call.votes != "500" || call.from != "2000-01-01" || call.to != "2025-12-31" ||
		call.sortBy != "vote_average.desc" || call.language != "en-US" {
		t.Errorf("first discover call params = %+v", call)
	}
}

func TestTMDBClient_Fetch_StopsAtTotalPages(t *testing.T) {
	fake := &fakeTMDB{totalPages: 2}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client, _ := NewTMDBClient(testTMDBConfig(server.URL))

	items, err := client.Fetch(context.Background(), testWindow(), 10)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	fake.mu.Lock()
	calls := len(fake.discoverCalls)
	fake.mu.Unlock()
	if calls != 2 {
		t.Errorf("discover calls = %d, want 2", calls)
	}
	// Page 2 repeats "Movie 1-1", which dedupe drops.
	if len(items) != 3 {
		t.Errorf("Fetch() returned %d items, want 3", len(items))
	}
}

func TestTMDBClient_Fetch_EmptyListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/genre/movie/list" {
			_, _ = w.Write([]byte(`{"genres":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[],"total_pages":0,"total_results":0}`))
	}))
	defer server.Close()

	client, _ := NewTMDBClient(testTMDBConfig(server.URL))

	items, err := client.Fetch(context.Background(), testWindow(), 3)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil for an empty listing", err)
	}
	if len(items) != 0 {
		t.Errorf("Fetch() returned %d items, want 0", len(items))
	}
}

func TestTMDBClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("upstream exploded"))
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"genres":`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, _ := NewTMDBClient(testTMDBConfig(server.URL))

			_, err := client.Fetch(context.Background(), testWindow(), 1)
			if !errors.Is(err, ErrFetch) {
				t.Errorf("Fetch() error = %v, want ErrFetch", err)
			}
		})
	}
}

func TestTMDBClient_Fetch_InvalidArguments(t *testing.T) {
	client, _ := NewTMDBClient(testTMDBConfig("http://127.0.0.1:1"))

	if _, err := client.Fetch(context.Background(), testWindow(), 0); err == nil || errors.Is(err, ErrFetch) {
		t.Errorf("Fetch(pages=0) error = %v, want non-ErrFetch error", err)
	}

	w := testWindow()
	w.From, w.To = w.To, w.From
	if _, err := client.Fetch(context.Background(), w, 1); err == nil || errors.Is(err, ErrFetch) {
		t.Errorf("Fetch(inverted window) error = %v, want non-ErrFetch error", err)
	}
}

func TestTMDBClient_RateLimitRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":1,"name":"Comedy"}]}`))
	}))
	defer server.Close()

	client, _ := NewTMDBClient(testTMDBConfig(server.URL))

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres() error = %v", err)
	}
	if genres[1] != "Comedy" {
		t.Errorf("Genres() = %v", genres)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestTMDBClient_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testTMDBConfig(server.URL)
	cfg.MaxRetries = 2
	client, _ := NewTMDBClient(cfg)

	_, err := client.Genres(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Genres() error = %v, want ErrFetch", err)
	}
}

func TestTMDBClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := NewTMDBClient(testTMDBConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Genres(ctx)
	if err == nil {
		t.Fatal("Genres() expected error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Genres() took %v, backoff ignored cancellation", elapsed)
	}
}

func TestTMDBClient_GenresCached(t *testing.T) {
	fake := &fakeTMDB{totalPages: 1}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client, _ := NewTMDBClient(testTMDBConfig(server.URL))

	for i := 0; i < 3; i++ {
		if _, err := client.Genres(context.Background()); err != nil {
			t.Fatalf("Genres() error = %v", err)
		}
	}
	if _, err := client.Fetch(context.Background(), testWindow(), 1); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got := atomic.LoadInt32(&fake.genreCalls); got != 1 {
		t.Errorf("genre endpoint calls = %d, want 1", got)
	}
}

func TestReadBodyForError_Truncates(t *testing.T) {
	big := make([]byte, maxErrorBodySize+100)
	for i := range big {
		big[i] = 'x'
	}
	got := readBodyForError(bytes.NewReader(big))
	if len(got) <= maxErrorBodySize || string(got[len(got)-len("(truncated)"):]) != "(truncated)" {
		t.Errorf("readBodyForError() did not mark truncation, len=%d", len(got))
	}
}
