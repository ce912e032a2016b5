package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/profile"
)

func TestMatcherReusesCachedBatch(t *testing.T) {
	embedder := &stubEmbedder{}
	m := NewMatcher(NewEngine(embedder), rankingJobs(), nil)
	p := eligibleProfile()

	first := m.Match(context.Background(), p)
	calls := embedder.calls.Load()
	require.Equal(t, int32(8), calls)

	same := *p
	same.Name = "renamed"
	same.Location = "Mumbai"
	second := m.Match(context.Background(), &same)

	assert.Same(t, first, second)
	assert.Equal(t, calls, embedder.calls.Load(), "cache hit must not call the embedder")
}

func TestMatcherRecomputesOnFingerprintChange(t *testing.T) {
	embedder := &stubEmbedder{}
	m := NewMatcher(NewEngine(embedder), rankingJobs(), nil)
	p := eligibleProfile()

	first := m.Match(context.Background(), p)

	changed := *p
	changed.Skills = []string{"React", "Node.js", "Go"}
	second := m.Match(context.Background(), &changed)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(16), embedder.calls.Load())
}

func TestMatcherClearCache(t *testing.T) {
	embedder := &stubEmbedder{}
	m := NewMatcher(NewEngine(embedder), rankingJobs(), nil)
	p := eligibleProfile()

	first := m.Match(context.Background(), p)
	m.ClearCache()
	second := m.Match(context.Background(), p)
	assert.NotSame(t, first, second)

	m.SetJobs(rankingJobs()[:1])
	third := m.Match(context.Background(), p)
	assert.Len(t, third.Results, 1)
	assert.Len(t, m.Jobs(), 1)
}

func TestMatcherIneligibleProfileIsNeutral(t *testing.T) {
	embedder := &stubEmbedder{}
	m := NewMatcher(NewEngine(embedder), rankingJobs(), nil)

	tests := map[string]*profile.Profile{
		"no skills": {Bio: bio},
		"short bio": {Skills: []string{"React"}, Bio: "too short"},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			batch := m.Match(context.Background(), p)
			assert.Equal(t, []string{"a", "b", "c", "d"}, resultIDs(batch.Results))
			for _, r := range batch.Results {
				assert.Equal(t, 50, r.MatchScore)
			}
		})
	}
	assert.Zero(t, embedder.calls.Load())
}

func TestMatcherDoesNotCacheDegradedBatch(t *testing.T) {
	embedder := failingEmbedder()
	m := NewMatcher(NewEngine(embedder), []*jobs.Job{{ID: "x", Title: "Role", Tags: []string{}}}, nil)
	p := eligibleProfile()

	first := m.Match(context.Background(), p)
	second := m.Match(context.Background(), p)

	assert.True(t, first.Degraded)
	assert.NotSame(t, first, second)
}

func TestCache(t *testing.T) {
	var c Cache
	_, ok := c.Get("fp")
	assert.False(t, ok)

	b := &Batch{RunID: "1"}
	c.Put("fp", b)
	got, ok := c.Get("fp")
	assert.True(t, ok)
	assert.Same(t, b, got)

	_, ok = c.Get("other")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("fp")
	assert.False(t, ok)
}
