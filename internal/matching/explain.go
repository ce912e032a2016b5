package matching

import (
	"fmt"
	"strings"
)

const defaultExplanation = "Match score calculated using AI algorithms"

// Explain describes why a result scored the way it did, one reason per line.
func Explain(r Result) string {
	if r.Neutral {
		return defaultExplanation
	}

	var lines []string
	switch {
	case r.MatchScore >= 90:
		lines = append(lines, "⭐ Outstanding match for your profile")
	case r.MatchScore >= 75:
		lines = append(lines, "✨ Strong match for your profile")
	case r.MatchScore >= 60:
		lines = append(lines, "👍 Good potential match")
	}

	switch {
	case r.Breakdown.Semantic >= 80:
		lines = append(lines, fmt.Sprintf("🎯 Excellent semantic match (%d%%)", r.Breakdown.Semantic))
	case r.Breakdown.Semantic >= 60:
		lines = append(lines, fmt.Sprintf("✓ Good semantic alignment (%d%%)", r.Breakdown.Semantic))
	}

	if n := len(r.MatchingSkills); n > 0 {
		shown := r.MatchingSkills
		if len(shown) > 3 {
			shown = shown[:3]
		}
		lines = append(lines, fmt.Sprintf("💡 %d matching skills: %s", n, strings.Join(shown, ", ")))
	}

	if n := len(r.MatchingAccessibility); n > 0 {
		lines = append(lines, fmt.Sprintf("♿ %d accessibility features match", n))
	}

	return strings.Join(lines, "\n")
}
