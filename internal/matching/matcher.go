package matching

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/profile"
)

// Matcher ranks a job collection for a profile and reuses the last batch
// while the profile fingerprint is unchanged.
type Matcher struct {
	engine *Engine
	cache  Cache
	logger *zap.Logger

	mu   sync.RWMutex
	jobs []*jobs.Job
}

func NewMatcher(engine *Engine, items []*jobs.Job, log *zap.Logger) *Matcher {
	return &Matcher{
		engine: engine,
		jobs:   items,
		logger: logger.ForComponent(log, "matcher"),
	}
}

// Match returns the ranked batch for p. Profiles that are not match-eligible
// get a neutral batch without any embedding call.
func (m *Matcher) Match(ctx context.Context, p *profile.Profile) *Batch {
	m.mu.RLock()
	items := m.jobs
	m.mu.RUnlock()

	if !p.IsMatchEligible() {
		m.logger.Info("profile is not eligible for matching; using neutral scores",
			zap.Int("skills", len(p.Skills)),
		)
		return NeutralBatch(p, items)
	}

	fingerprint := p.Fingerprint()
	if cached, ok := m.cache.Get(fingerprint); ok {
		m.logger.Debug("match cache hit", zap.String(logger.FieldMatchRun, cached.RunID))
		return cached
	}

	batch := m.engine.MatchAll(ctx, p, items)
	if !batch.Degraded {
		m.cache.Put(fingerprint, batch)
	}
	return batch
}

// SetJobs replaces the job collection and clears the cache.
func (m *Matcher) SetJobs(items []*jobs.Job) {
	m.mu.Lock()
	m.jobs = items
	m.mu.Unlock()
	m.ClearCache()
}

func (m *Matcher) ClearCache() {
	m.cache.Clear()
}

func (m *Matcher) Jobs() []*jobs.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs
}
