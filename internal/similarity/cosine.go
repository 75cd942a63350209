// Package similarity scores embedding vectors for in-process search backends.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched lengths, empty or zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ExactTolerance is how close to 1 a similarity must be to count as an exact match.
const ExactTolerance = 1e-6

// Score maps cosine similarity to [0, 1], the scale search results are reported on.
func Score(a, b []float32) float64 {
	return Clamp(Cosine(a, b))
}

// Clamp maps a raw similarity onto [0, 1]. Negative correlation is treated as unrelated.
// Values within ExactTolerance of 1 become exactly 1, so an identical vector passes a
// threshold of 1 despite rounding in the norms or a float32 distance from the index.
func Clamp(s float64) float64 {
	if s >= 1-ExactTolerance {
		return 1
	}
	return max(0, s)
}
