package vectordb

import "math"

// CosineSimilarity returns the cosine similarity between two vectors in
// [-1, 1]. Higher means more similar; this is the inverse sense of the
// cosine distance reported by the store's nearest-neighbor query.
// Mismatched lengths are compared over the shorter prefix; a zero vector
// yields 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
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
