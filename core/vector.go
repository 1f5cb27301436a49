package core

import "math"

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors, clamped to [0, 1]. Mismatched lengths compare over the shorter
// prefix. The corpus scan and the hybrid scorer both rank with this one
// function, so a score means the same thing on either path.
func CosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return float32(cos)
}
