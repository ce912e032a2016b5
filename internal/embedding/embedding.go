package embedding

import (
	"context"
	"strings"
)

// DefaultDimension is the vector length used when a provider is not told otherwise.
const DefaultDimension = 512

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	// Embed returns the vector for text. Blank text yields a zero vector of
	// Dimension() without contacting any backend.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the length of the produced vectors.
	Dimension() int
}

// Zero returns a zero vector of length dim.
func Zero(dim int) []float32 {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return make([]float32, dim)
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func dimensionOrDefault(dim int) int {
	if dim <= 0 {
		return DefaultDimension
	}
	return dim
}
