// Package similarity implements cosine-similarity and L2-distance ranking
// over dense float32 vectors. It backs the client-side retrieval fallback
// used when the server-side ranked query is unavailable.
package similarity

import (
	"fmt"
	"math"
	"sort"
)

// DimensionError is returned when two vectors of unequal length are compared.
type DimensionError struct {
	// LenA and LenB are the mismatched vector lengths.
	LenA, LenB int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("similarity: vector dimensions must match: %d != %d", e.LenA, e.LenB)
}

// Cosine returns the cosine similarity between a and b in [-1, 1].
// Vectors of unequal length are an error, not silently tolerated.
// When either vector has zero magnitude the result is defined as 0 to
// avoid division by zero.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}

// L2Distance returns the Euclidean distance between a and b. The distance
// is always >= 0 and is 0 iff the vectors are identical.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{LenA: len(a), LenB: len(b)}
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Candidate pairs a vector with the content it represents.
type Candidate struct {
	// Vector is the candidate's embedding.
	Vector []float32
	// Content is the text snippet the vector was computed from.
	Content string
}

// Match is a scored candidate returned by TopSimilar.
type Match struct {
	// Similarity is the cosine similarity to the query vector.
	Similarity float64
	// Content is the candidate's text snippet.
	Content string
}

// TopSimilar returns the k candidates with the highest cosine similarity to
// query, ordered descending. Relative order of exact ties is undefined.
// If k exceeds the candidate count all candidates are returned; an empty
// candidate set yields an empty result. A dimension mismatch on any
// candidate is an error.
func TopSimilar(query []float32, candidates []Candidate, k int) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		sim, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Similarity: sim, Content: c.Content})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k > len(matches) {
		k = len(matches)
	}
	if k < 0 {
		k = 0
	}
	return matches[:k], nil
}
