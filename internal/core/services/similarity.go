package services

import "math"

// cosineSimilarity computes the normalized dot product of two vectors.
// A zero-norm or empty vector scores 0. Vectors of unequal length are
// compared over the shorter prefix; mismatched lengths come from a
// provider returning an unexpected dimensionality and produce
// degenerate (not failing) scores.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
