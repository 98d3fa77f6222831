// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package vectorizer provides the text vectorization strategies used to
// build similarity snapshots.
//
// Two strategies satisfy recommend.Vectorizer:
//
//   - TFIDF: lexical term weighting over a bounded vocabulary learned from
//     the batch itself. No external dependency, deterministic, but blind to
//     synonyms ("funny robot" and "hilarious android" share nothing).
//   - EmbeddingClient: dense sentence embeddings from an OpenAI-compatible
//     /embeddings endpoint. Captures paraphrase and synonymy at the cost of
//     a network call per batch and a model to host.
//
// Both return one vector per input text in input order, and a valid zero
// vector for text with no usable tokens.
package vectorizer

import (
	"context"
	"errors"
	"math"
	"sort"
)

// ErrEmptyInput is returned when Vectorize is called with no texts.
var ErrEmptyInput = errors.New("vectorizer: empty input")

// DefaultMaxFeatures bounds the TF-IDF vocabulary.
const DefaultMaxFeatures = 5000

// TFIDFConfig configures the TF-IDF vectorizer.
type TFIDFConfig struct {
	// MaxFeatures keeps the most frequent terms across the batch.
	MaxFeatures int

	// SublinearTF replaces raw counts with 1 + ln(count).
	SublinearTF bool
}

// TFIDF is a batch TF-IDF vectorizer. The vocabulary and IDF weights are
// learned from the texts passed to each Vectorize call, so every snapshot
// build gets its own vocabulary.
//
// Weights use the smoothed IDF ln((1+n)/(1+df)) + 1 and rows are
// L2-normalised. Vocabulary selection ranks terms by total count with ties
// broken alphabetically, so output is deterministic.
type TFIDF struct {
	maxFeatures int
	sublinearTF bool
}

// NewTFIDF creates a TF-IDF vectorizer.
func NewTFIDF(cfg TFIDFConfig) *TFIDF {
	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TFIDF{
		maxFeatures: maxFeatures,
		sublinearTF: cfg.SublinearTF,
	}
}

// Name implements recommend.Vectorizer.
func (t *TFIDF) Name() string {
	return "tfidf"
}

// Vectorize implements recommend.Vectorizer.
//
// If no text yields a single token the vocabulary is empty; every item then
// gets a one-dimensional zero vector.
func (t *TFIDF) Vectorize(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	docs := make([]map[string]int, len(texts))
	totals := make(map[string]int)
	docFreq := make(map[string]int)
	for i, text := range texts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		counts := make(map[string]int)
		for _, tok := range Tokenize(text) {
			counts[tok]++
		}
		for term, c := range counts {
			totals[term] += c
			docFreq[term]++
		}
		docs[i] = counts
	}

	vocab := t.selectVocabulary(totals)
	dim := len(vocab)
	if dim == 0 {
		dim = 1
	}

	n := float64(len(texts))
	idf := make([]float64, len(vocab))
	for term, col := range vocab {
		idf[col] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([][]float64, len(texts))
	for i, counts := range docs {
		vec := make([]float64, dim)
		for term, c := range counts {
			col, ok := vocab[term]
			if !ok {
				continue
			}
			tf := float64(c)
			if t.sublinearTF {
				tf = 1 + math.Log(tf)
			}
			vec[col] = tf * idf[col]
		}
		l2Normalize(vec)
		vectors[i] = vec
	}
	return vectors, nil
}

// selectVocabulary keeps up to maxFeatures terms by total count, breaking
// ties alphabetically, and assigns columns in alphabetical order.
func (t *TFIDF) selectVocabulary(totals map[string]int) map[string]int {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > t.maxFeatures {
		terms = terms[:t.maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

// l2Normalize scales v to unit length in place. Zero vectors are left as is.
func l2Normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}
