// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

func TestRankingConfig_Blend(t *testing.T) {
	r := DefaultRankingConfig()

	tests := []struct {
		name   string
		sim    float64
		rating float64
		votes  int
		want   float64
	}{
		{"all max", 1, 10, 5000, 1.0},
		{"all zero", 0, 0, 0, 0},
		{"votes capped", 0, 0, 50000, 0.1},
		{"negative similarity clamped", -0.5, 10, 0, 0.3},
		{"documented mix", 0.5, 8, 2500, 0.6*0.5 + 0.3*0.8 + 0.1*0.5},
		{"negative votes", 0, 0, -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Blend(tt.sim, tt.rating, tt.votes); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Blend(%v, %v, %d) = %v, want %v", tt.sim, tt.rating, tt.votes, got, tt.want)
			}
		})
	}
}

func TestRankingConfig_BlendCustomWeights(t *testing.T) {
	r := RankingConfig{Mode: RankBlended, Weights: Weights{Similarity: 1}, VoteCap: 100}
	if got := r.Blend(0.42, 10, 100); got != 0.42 {
		t.Errorf("similarity-only Blend() = %v, want 0.42", got)
	}
}

func TestRankingConfig_Rank(t *testing.T) {
	candidates := func() []candidate {
		return []candidate{
			{index: 0, similarity: 0.9, score: 0.50},
			{index: 1, similarity: 0.5, score: 0.70},
			{index: 2, similarity: 0.9, score: 0.60},
			{index: 3, similarity: 0.5, score: 0.70},
			{index: 4, similarity: 0.1, score: 0.20},
		}
	}
	order := func(cs []candidate) []int {
		out := make([]int, len(cs))
		for i, c := range cs {
			out[i] = c.index
		}
		return out
	}

	tests := []struct {
		name string
		mode RankMode
		topN int
		want []int
	}{
		{"blended", RankBlended, 10, []int{1, 3, 2, 0, 4}},
		{"similarity", RankSimilarity, 10, []int{2, 0, 1, 3, 4}},
		{"truncated", RankBlended, 2, []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRankingConfig()
			r.Mode = tt.mode
			if got := order(r.rank(candidates(), tt.topN)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rank() order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RankingConfig)
		wantErr bool
	}{
		{"default", func(*RankingConfig) {}, false},
		{"similarity mode", func(r *RankingConfig) { r.Mode = RankSimilarity }, false},
		{"unknown mode", func(r *RankingConfig) { r.Mode = "popular" }, true},
		{"negative weight", func(r *RankingConfig) { r.Weights.Rating = -0.1 }, true},
		{"all zero weights", func(r *RankingConfig) { r.Weights = Weights{} }, true},
		{"zero vote cap", func(r *RankingConfig) { r.VoteCap = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRankingConfig()
			tt.mutate(&r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenreFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		genres []string
		want   bool
	}{
		{"empty filter keeps all", nil, []string{"Drama"}, true},
		{"blank filter keeps all", []string{" "}, nil, true},
		{"single match", []string{"Comedy"}, []string{"Action", "Comedy"}, true},
		{"or semantics", []string{"Comedy", "Horror"}, []string{"Horror"}, true},
		{"case insensitive", []string{"science fiction"}, []string{"Science Fiction"}, true},
		{"no overlap", []string{"Comedy"}, []string{"Drama"}, false},
		{"item without genres", []string{"Comedy"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newGenreFilter(tt.filter).matches(tt.genres); got != tt.want {
				t.Errorf("matches(%v) with filter %v = %v, want %v", tt.genres, tt.filter, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposeText(t *testing.T) {
	item := catalog.Item{Title: "Heat", Synopsis: "Robbers and cops.", Genres: []string{"Crime", "Thriller"}}

	tests := []struct {
		name  string
		item  catalog.Item
		boost int
		want  string
	}{
		{"default boost", item, DefaultGenreBoost, "Heat Robbers and cops. Crime Thriller Crime Thriller Crime Thriller"},
		{"boost disabled", item, 0, "Heat Robbers and cops."},
		{"no synopsis", catalog.Item{Title: "Heat", Genres: []string{"Crime"}}, 1, "Heat Crime"},
		{"no genres", catalog.Item{Title: "Heat", Synopsis: "x"}, 3, "Heat x"},
		{"empty", catalog.Item{}, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeText(tt.item, tt.boost); got != tt.want {
				t.Errorf("ComposeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"negative boost", func(c *Config) { c.GenreBoost = -1 }, true},
		{"bad ranking", func(c *Config) { c.Ranking.VoteCap = -1 }, true},
		{"matrix without limit", func(c *Config) { c.PrecomputeMatrix = true; c.MatrixMaxItems = 0 }, true},
		{"zero default top_n", func(c *Config) { c.Limits.DefaultTopN = 0 }, true},
		{"max below default", func(c *Config) { c.Limits.MaxTopN = 5 }, true},
		{"cache without ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"disabled cache ignores ttl", func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuery_CacheKey(t *testing.T) {
	a := Query{Title: "Heat", Genres: []string{"Crime", "action"}, TopN: 5}
	b := Query{Title: " Heat ", Genres: []string{"Action", "crime", ""}, TopN: 5}
	if a.cacheKey(1) != b.cacheKey(1) {
		t.Errorf("cacheKey() differs for equivalent queries: %q vs %q", a.cacheKey(1), b.cacheKey(1))
	}
	if a.cacheKey(1) == a.cacheKey(2) {
		t.Error("cacheKey() ignores snapshot version")
	}
	c := a
	c.TopN = 6
	if a.cacheKey(1) == c.cacheKey(1) {
		t.Error("cacheKey() ignores TopN")
	}
}
