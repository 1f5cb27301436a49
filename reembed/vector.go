package reembed

import "math"

// NormalizeVector scales an embedding to unit length so that similarity
// scores depend only on direction. Embedding models are not consistent
// about pre-normalizing their output, so every freshly generated movie
// vector passes through here before it is stored.
// Returns a new vector; a zero vector stays zero.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
