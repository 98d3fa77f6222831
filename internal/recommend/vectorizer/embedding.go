// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// DefaultBatchSize is the number of texts sent per embeddings request.
const DefaultBatchSize = 64

// maxErrorBodySize limits how much of an error response body is read.
const maxErrorBodySize = 16 * 1024

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// EmbeddingClient vectorizes texts with a sentence-embedding model served
// behind an OpenAI-compatible POST /embeddings endpoint.
//
// Texts are sent in batches; blank texts are not sent and get a zero
// vector of the model's dimension. HTTP 429 responses are retried with
// exponential backoff, honouring Retry-After.
//
// Thread Safety: safe for concurrent use.
type EmbeddingClient struct {
	baseURL        string
	apiKey         string
	model          string
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	client         *http.Client
	logger         zerolog.Logger
}

// NewEmbeddingClient creates a client from cfg. The API key is injected here;
// an empty key returns an error wrapping config.ErrMissingCredential.
func NewEmbeddingClient(cfg *config.EmbeddingConfig) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding client: api key: %w", config.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("embedding client: base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding client: model is required")
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &EmbeddingClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		batchSize:      batch,
		maxRetries:     retries,
		retryBaseDelay: time.Second,
		client:         &http.Client{Timeout: timeout},
		logger:         logging.WithComponent("embedding"),
	}, nil
}

// Name implements recommend.Vectorizer.
func (c *EmbeddingClient) Name() string {
	return "embedding:" + c.model
}

// Vectorize implements recommend.Vectorizer.
func (c *EmbeddingClient) Vectorize(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	// Only non-blank texts are sent; positions maps request order back to input order.
	positions := make([]int, 0, len(texts))
	inputs := make([]string, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		positions = append(positions, i)
		inputs = append(inputs, text)
	}

	vectors := make([][]float64, len(texts))
	dim := 0

	for start := 0; start < len(inputs); start += c.batchSize {
		end := min(start+c.batchSize, len(inputs))

		embeddings, err := c.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		for k, vec := range embeddings {
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) != dim || dim == 0 {
				return nil, fmt.Errorf("embedding dimension %d at input %d, want %d", len(vec), positions[start+k], dim)
			}
			vectors[positions[start+k]] = vec
		}
	}

	if dim == 0 {
		dim = 1
	}
	for i := range vectors {
		if vectors[i] == nil {
			vectors[i] = make([]float64, dim)
		}
	}

	c.logger.Debug().
		Int("texts", len(texts)).
		Int("sent", len(inputs)).
		Int("dimension", dim).
		Msg("Embedded texts")

	return vectors, nil
}

// embedBatch embeds one batch and returns vectors in input order.
func (c *EmbeddingClient) embedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.postWithRetry(ctx, body)
	if err != nil {
		metrics.RecordEmbeddingRequest("error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordEmbeddingRequest(strconv.Itoa(resp.StatusCode))
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("embeddings request failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RecordEmbeddingRequest("decode_error")
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		metrics.RecordEmbeddingRequest("malformed")
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(parsed.Data), len(inputs))
	}

	// Each index in 0..n-1 must appear exactly once.
	out := make([][]float64, len(inputs))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			metrics.RecordEmbeddingRequest("malformed")
			return nil, fmt.Errorf("embeddings response has invalid or duplicate index %d", d.Index)
		}
		if d.Embedding == nil {
			d.Embedding = []float64{}
		}
		out[d.Index] = d.Embedding
	}
	metrics.RecordEmbeddingRequest("success")
	return out, nil
}

// postWithRetry sends body to /embeddings, retrying HTTP 429.
func (c *EmbeddingClient) postWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}
		_ = resp.Body.Close()
		metrics.RecordEmbeddingRequest("rate_limited")

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		c.logger.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by embedding endpoint, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
