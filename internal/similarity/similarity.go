// Package similarity compares embedding vectors.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
//
// It degrades to 0 instead of failing when either vector is empty, the
// dimensions differ, either norm is zero, or the arithmetic is not finite.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}

	return clamp(sim)
}

// ToPercentage maps a similarity in [-1, 1] linearly onto [0, 100].
//
// This is a remap, not a calibrated probability: short natural language
// snippets rarely score below 0, so the lower half of the range is mostly
// unreachable in practice.
func ToPercentage(sim float64) int {
	if math.IsNaN(sim) {
		sim = 0
	}
	return int(math.Round(((clamp(sim) + 1) / 2) * 100))
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
