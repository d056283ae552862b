// Package vector provides optional embedding vectors and similarity math
// for audience gating and relevance scoring.
package vector

import "math"

// Embedding is an optional dense vector. The zero value is absent;
// consumers check Present once at the boundary instead of repeating
// nil guards downstream.
type Embedding struct {
	values []float64
}

// New wraps a raw vector as a present Embedding.
// An empty or nil slice yields an absent Embedding.
func New(values []float64) Embedding {
	if len(values) == 0 {
		return Embedding{}
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return Embedding{values: vals}
}

// Absent returns an Embedding carrying no vector.
func Absent() Embedding {
	return Embedding{}
}

// Present reports whether the embedding carries a vector.
func (e Embedding) Present() bool {
	return len(e.values) > 0
}

// Dim returns the vector dimension, 0 when absent.
func (e Embedding) Dim() int {
	return len(e.values)
}

// Values returns a copy of the underlying vector, nil when absent.
func (e Embedding) Values() []float64 {
	if !e.Present() {
		return nil
	}
	vals := make([]float64, len(e.values))
	copy(vals, e.values)
	return vals
}

// Cosine computes the cosine similarity between two embeddings.
// Returns 0 when either embedding is absent, when the dimensions do
// not match, or when either vector has zero magnitude. Mismatched
// dimensions are a degraded-data condition, not an error.
func Cosine(a, b Embedding) float64 {
	if !a.Present() || !b.Present() {
		return 0
	}
	if len(a.values) != len(b.values) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a.values {
		dot += a.values[i] * b.values[i]
		magA += a.values[i] * a.values[i]
		magB += b.values[i] * b.values[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
