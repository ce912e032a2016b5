package matching

import (
	"math"
	"sort"

	"github.com/spigell/nexus/internal/jobs"
)

const (
	// NeutralScore is reported whenever a pair cannot be scored.
	NeutralScore = 50
	// GoodMatchScore is the threshold counted by Stats.MatchedJobs.
	GoodMatchScore = 70
)

type Breakdown struct {
	Semantic      int `json:"semantic"`
	Skills        int `json:"skills"`
	Accessibility int `json:"accessibility"`
}

// Result scores one job against one profile.
type Result struct {
	Job                   *jobs.Job `json:"job"`
	MatchScore            int       `json:"matchScore"`
	SemanticScore         int       `json:"semanticScore"`
	Breakdown             Breakdown `json:"breakdown"`
	MatchingSkills        []string  `json:"matchingSkills"`
	MatchingAccessibility []string  `json:"matchingAccessibility"`
	ProcessingTimeMs      int64     `json:"processingTimeMs"`

	// Neutral is set when the scores are defaults rather than computed.
	Neutral bool   `json:"neutral,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NeutralResult returns the default result for job. A non-nil err is recorded.
func NeutralResult(job *jobs.Job, err error) Result {
	r := Result{
		Job:                   job,
		MatchScore:            NeutralScore,
		SemanticScore:         NeutralScore,
		Breakdown:             Breakdown{Semantic: NeutralScore, Skills: NeutralScore, Accessibility: NeutralScore},
		MatchingSkills:        []string{},
		MatchingAccessibility: []string{},
		Neutral:               true,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

type Stats struct {
	TotalJobs        int   `json:"totalJobs"`
	MatchedJobs      int   `json:"matchedJobs"`
	AverageScore     int   `json:"averageScore"`
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// Batch is a ranked list of results for one profile.
type Batch struct {
	RunID       string   `json:"runId"`
	Fingerprint string   `json:"fingerprint"`
	Results     []Result `json:"results"`
	Stats       Stats    `json:"stats"`

	// Degraded marks a batch where no job could be scored.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (b *Batch) Len() int {
	return len(b.Results)
}

// Top returns the first n results, or all of them when n exceeds the length.
func (b *Batch) Top(n int) []Result {
	if n < 0 {
		n = 0
	}
	if n > len(b.Results) {
		n = len(b.Results)
	}
	return b.Results[:n]
}

func computeStats(results []Result, elapsedMs int64) Stats {
	stats := Stats{TotalJobs: len(results), ProcessingTimeMs: elapsedMs}
	if len(results) == 0 {
		return stats
	}

	sum := 0
	for _, r := range results {
		sum += r.MatchScore
		if r.MatchScore >= GoodMatchScore {
			stats.MatchedJobs++
		}
	}
	stats.AverageScore = int(math.Round(float64(sum) / float64(len(results))))
	return stats
}

// rank sorts results by descending score keeping input order on ties.
func rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
