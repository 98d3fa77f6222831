// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero-magnitude vector on either side, or a length mismatch, yields 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clampUnit(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// normalize returns a unit-length copy of v. A zero vector (or one holding
// NaN or Inf) is returned as all zeros with degenerate set.
func normalize(v []float64) (unit []float64, degenerate bool) {
	unit = make([]float64, len(v))

	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return unit, true
	}

	for i, x := range v {
		unit[i] = x / norm
	}
	return unit, false
}

// dot is the inner product of two equal-length unit vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// clampUnit bounds rounding error to [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// clamp01 bounds x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
