package embedding

import (
	"context"
	"math"
)

// Provider defines the interface for generating text embeddings.
// The API key is passed per call so a key pool can rotate credentials
// between requests.
type Provider interface {
	Generate(ctx context.Context, apiKey, text string, dimensionality int) ([]float32, error)
}

// Normalize scales a vector to unit L2 norm. Vectors are always normalized
// before storage so cosine distance behaves consistently across requested
// dimensionalities. A zero vector is returned unchanged.
func Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vector
	}
	normalized := make([]float32, len(vector))
	for i, v := range vector {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}
