package matching

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/profile"
)

const bio = "Experienced web developer with 5 years building scalable apps"

type stubEmbedder struct {
	calls atomic.Int32
	embed func(text string) ([]float32, error)
}

func (s *stubEmbedder) Dimension() int { return 3 }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.embed != nil {
		return s.embed(text)
	}
	return []float32{1, 0, 0}, nil
}

func failingEmbedder() *stubEmbedder {
	return &stubEmbedder{embed: func(string) ([]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}}
}

func eligibleProfile() *profile.Profile {
	return &profile.Profile{
		Skills:        []string{"React", "Node.js"},
		Bio:           bio,
		Accessibility: []string{},
	}
}

func TestMatchEndToEnd(t *testing.T) {
	embedder := &stubEmbedder{}
	engine := NewEngine(embedder)

	job := &jobs.Job{
		ID:            "job-1",
		Description:   "Build web apps with React",
		Tags:          []string{"React", "MongoDB"},
		Accessibility: []string{"Remote"},
	}

	r := engine.Match(context.Background(), eligibleProfile(), job)

	assert.Equal(t, 100, r.SemanticScore)
	assert.Equal(t, Breakdown{Semantic: 100, Skills: 50, Accessibility: 100}, r.Breakdown)
	assert.Equal(t, 90, r.MatchScore)
	assert.Equal(t, []string{"React"}, r.MatchingSkills)
	assert.Empty(t, r.MatchingAccessibility)
	assert.False(t, r.Neutral)
	assert.Empty(t, r.Error)
	assert.Equal(t, int32(2), embedder.calls.Load())
}

func TestMatchNeutralOnEmptyText(t *testing.T) {
	embedder := &stubEmbedder{}
	engine := NewEngine(embedder)

	tests := []struct {
		name    string
		profile *profile.Profile
		job     *jobs.Job
	}{
		{
			name:    "empty job",
			profile: eligibleProfile(),
			job:     &jobs.Job{ID: "blank", Tags: []string{}, Accessibility: []string{}},
		},
		{
			name:    "empty profile",
			profile: &profile.Profile{},
			job:     &jobs.Job{ID: "full", Title: "Go Developer", Tags: []string{"Go"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := engine.Match(context.Background(), tt.profile, tt.job)
			assert.Equal(t, 50, r.MatchScore)
			assert.Equal(t, 50, r.SemanticScore)
			assert.Equal(t, Breakdown{Semantic: 50, Skills: 50, Accessibility: 50}, r.Breakdown)
			assert.Zero(t, r.ProcessingTimeMs)
			assert.Empty(t, r.Error)
		})
	}
	assert.Zero(t, embedder.calls.Load(), "embedder must not be called for empty text")
}

func TestSkillAndAccessibilityRules(t *testing.T) {
	engine := NewEngine(&stubEmbedder{})

	tests := []struct {
		name              string
		skills            []string
		needs             []string
		tags              []string
		features          []string
		wantSkills        int
		wantAccessibility int
		wantMatchingNeeds []string
	}{
		{
			name:              "zero tags is neutral",
			skills:            []string{"Go", "Rust"},
			tags:              []string{},
			wantSkills:        50,
			wantAccessibility: 100,
		},
		{
			name:              "zero needs is full credit",
			skills:            []string{"Go"},
			tags:              []string{"Go"},
			features:          []string{},
			wantSkills:        100,
			wantAccessibility: 100,
		},
		{
			name:              "containment in both directions",
			skills:            []string{"node", "ReactJS"},
			tags:              []string{"Node.js", "React", "AWS", "SQL"},
			wantSkills:        50,
			wantAccessibility: 100,
		},
		{
			name:       "several skills on one tag are capped",
			skills:     []string{"Java", "JavaScript"},
			tags:       []string{"JavaScript"},
			wantSkills: 100,
			// no needs declared
			wantAccessibility: 100,
		},
		{
			name:              "need must be contained in feature",
			skills:            []string{"Go"},
			tags:              []string{"Go"},
			needs:             []string{"remote", "screen-reader", "flexible"},
			features:          []string{"100% Remote", "Screen Reader Compatible", "Flexible Hours"},
			wantSkills:        100,
			wantAccessibility: 67,
			wantMatchingNeeds: []string{"remote", "flexible"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &profile.Profile{Skills: tt.skills, Bio: bio, Accessibility: tt.needs}
			job := &jobs.Job{ID: "j", Title: "Role", Tags: tt.tags, Accessibility: tt.features}

			r := engine.Match(context.Background(), p, job)
			assert.Equal(t, tt.wantSkills, r.Breakdown.Skills)
			assert.Equal(t, tt.wantAccessibility, r.Breakdown.Accessibility)
			if tt.wantMatchingNeeds != nil {
				assert.Equal(t, tt.wantMatchingNeeds, r.MatchingAccessibility)
			}
			assert.GreaterOrEqual(t, r.MatchScore, 0)
			assert.LessOrEqual(t, r.MatchScore, 100)
		})
	}
}

func TestMatchScoreBoundedUnderExtremeVectors(t *testing.T) {
	vectors := [][]float32{
		{3e38, 3e38, 3e38},
		{-3e38, 1, 0},
		{0, 0, 0},
	}
	for _, vec := range vectors {
		engine := NewEngine(&stubEmbedder{embed: func(string) ([]float32, error) { return vec, nil }})
		r := engine.Match(context.Background(), eligibleProfile(), &jobs.Job{ID: "j", Title: "Role", Tags: []string{"React"}})
		assert.GreaterOrEqual(t, r.MatchScore, 0)
		assert.LessOrEqual(t, r.MatchScore, 100)
		assert.GreaterOrEqual(t, r.SemanticScore, 0)
		assert.LessOrEqual(t, r.SemanticScore, 100)
	}
}

func TestMatchRecoversEmbeddingError(t *testing.T) {
	engine := NewEngine(failingEmbedder())
	r := engine.Match(context.Background(), eligibleProfile(), &jobs.Job{ID: "j", Title: "Role", Tags: []string{"React"}})

	assert.Equal(t, 50, r.MatchScore)
	assert.True(t, r.Neutral)
	assert.Contains(t, r.Error, "embedding service unavailable")
}

func rankingJobs() []*jobs.Job {
	return []*jobs.Job{
		{ID: "a", Title: "Data Engineer", Tags: []string{"Python"}},
		{ID: "b", Title: "Frontend Developer", Tags: []string{"React"}},
		{ID: "c", Title: "Backend Developer", Tags: []string{"Go"}},
		{ID: "d", Title: "UI Developer", Tags: []string{"React"}},
	}
}

func resultIDs(results []Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Job.ID)
	}
	return ids
}

func TestMatchAllRanksStably(t *testing.T) {
	engine := NewEngine(&stubEmbedder{}, WithConcurrency(2))
	p := &profile.Profile{Skills: []string{"React"}, Bio: bio}

	batch := engine.MatchAll(context.Background(), p, rankingJobs())

	require.False(t, batch.Degraded)
	assert.Equal(t, []string{"b", "d", "a", "c"}, resultIDs(batch.Results))
	assert.Equal(t, 100, batch.Results[0].MatchScore)
	assert.Equal(t, 80, batch.Results[3].MatchScore)
	assert.Equal(t, 4, batch.Stats.TotalJobs)
	assert.Equal(t, 4, batch.Stats.MatchedJobs)
	assert.Equal(t, 90, batch.Stats.AverageScore)
	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, p.Fingerprint(), batch.Fingerprint)
}

func TestMatchAllDegradesWhenEveryJobFails(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := NewEngine(failingEmbedder(), WithLogger(zap.New(core)))

	batch := engine.MatchAll(context.Background(), eligibleProfile(), rankingJobs())

	require.True(t, batch.Degraded)
	assert.NotEmpty(t, batch.Error)
	assert.Equal(t, []string{"a", "b", "c", "d"}, resultIDs(batch.Results))
	for _, r := range batch.Results {
		assert.Equal(t, 50, r.MatchScore)
		assert.NotEmpty(t, r.Error)
	}
	assert.Equal(t, 50, batch.Stats.AverageScore)
	assert.Zero(t, batch.Stats.MatchedJobs)
	assert.Equal(t, 1, logs.FilterMessage("batch matching degraded").Len())
}

func TestMatchAllKeepsPartialFailures(t *testing.T) {
	embedder := &stubEmbedder{embed: func(text string) ([]float32, error) {
		if strings.Contains(text, "Backend") {
			return nil, errors.New("timeout")
		}
		return []float32{1, 0, 0}, nil
	}}
	engine := NewEngine(embedder)
	p := &profile.Profile{Skills: []string{"React"}, Bio: bio}

	batch := engine.MatchAll(context.Background(), p, rankingJobs())

	require.False(t, batch.Degraded)
	assert.Equal(t, []string{"b", "d", "a", "c"}, resultIDs(batch.Results))
	failed := batch.Results[3]
	assert.Equal(t, "c", failed.Job.ID)
	assert.Equal(t, 50, failed.MatchScore)
	assert.Contains(t, failed.Error, "timeout")
}

func TestMatchAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := NewEngine(&stubEmbedder{}).MatchAll(ctx, eligibleProfile(), rankingJobs())

	assert.True(t, batch.Degraded)
	assert.Len(t, batch.Results, 4)
}

func TestMatchAllEmptyCollection(t *testing.T) {
	batch := NewEngine(&stubEmbedder{}).MatchAll(context.Background(), eligibleProfile(), nil)

	assert.False(t, batch.Degraded)
	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.Stats.TotalJobs)
	assert.Zero(t, batch.Stats.AverageScore)
}

func TestBatchTop(t *testing.T) {
	b := &Batch{Results: make([]Result, 3)}
	assert.Len(t, b.Top(2), 2)
	assert.Len(t, b.Top(10), 3)
	assert.Empty(t, b.Top(-1))
}
