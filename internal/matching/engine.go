package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/nexus/internal/embedding"
	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/profile"
	"github.com/spigell/nexus/internal/similarity"
)

const (
	semanticWeight      = 0.7
	skillsWeight        = 0.2
	accessibilityWeight = 0.1

	defaultConcurrency = 8
)

var errAllFailed = errors.New("embedding failed for every job")

// Engine scores profiles against jobs.
type Engine struct {
	embedder    embedding.Embedder
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*Engine)

// WithConcurrency bounds the number of jobs scored at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func NewEngine(embedder embedding.Embedder, opts ...Option) *Engine {
	e := &Engine{
		embedder:    embedder,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logger.ForComponent(e.logger, "matching")
	return e
}

// Match scores a single pair. Embedding failures are logged and turned into
// a neutral result carrying the error.
func (e *Engine) Match(ctx context.Context, p *profile.Profile, job *jobs.Job) Result {
	r, err := e.match(ctx, p, job)
	if err != nil {
		e.logger.Warn("job matching failed", zap.String("job_id", job.ID), zap.Error(err))
		return NeutralResult(job, err)
	}
	return r
}

func (e *Engine) match(ctx context.Context, p *profile.Profile, job *jobs.Job) (Result, error) {
	start := e.now()

	profileText := p.Text()
	jobText := job.Text()
	if profileText == "" || jobText == "" {
		e.logger.Debug("insufficient data for matching", zap.String("job_id", job.ID))
		return NeutralResult(job, nil), nil
	}

	var profileVec, jobVec []float32
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := e.embedder.Embed(gCtx, profileText)
		if err != nil {
			return fmt.Errorf("embed profile: %w", err)
		}
		profileVec = vec
		return nil
	})
	g.Go(func() error {
		vec, err := e.embedder.Embed(gCtx, jobText)
		if err != nil {
			return fmt.Errorf("embed job %s: %w", job.ID, err)
		}
		jobVec = vec
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	semantic := similarity.ToPercentage(similarity.Cosine(profileVec, jobVec))
	matchingSkills, skillScore := skillOverlap(p.Skills, job.Tags)
	matchingNeeds, accessibilityScore := accessibilityFit(p.Accessibility, job.Accessibility)

	final := math.Round(float64(semantic)*semanticWeight +
		float64(skillScore)*skillsWeight +
		float64(accessibilityScore)*accessibilityWeight)

	return Result{
		Job:           job,
		MatchScore:    clampScore(int(final)),
		SemanticScore: semantic,
		Breakdown: Breakdown{
			Semantic:      semantic,
			Skills:        skillScore,
			Accessibility: accessibilityScore,
		},
		MatchingSkills:        matchingSkills,
		MatchingAccessibility: matchingNeeds,
		ProcessingTimeMs:      e.now().Sub(start).Milliseconds(),
	}, nil
}

// MatchAll scores every job and ranks the results. It always returns a batch:
// when no job could be scored every job gets the neutral score in input order.
func (e *Engine) MatchAll(ctx context.Context, p *profile.Profile, items []*jobs.Job) *Batch {
	start := e.now()
	runID := uuid.NewString()
	log := e.logger.With(zap.String(logger.FieldMatchRun, runID))
	log.Info("batch matching started", zap.Int("jobs", len(items)))

	results := make([]Result, len(items))
	var failed atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for idx, job := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failed.Add(1)
				results[idx] = NeutralResult(job, err)
				return nil
			}
			r, err := e.match(ctx, p, job)
			if err != nil {
				failed.Add(1)
				log.Warn("job matching failed", zap.String("job_id", job.ID), zap.Error(err))
				r = NeutralResult(job, err)
			}
			results[idx] = r
			return nil
		})
	}
	// Workers never return errors.
	_ = g.Wait()

	batch := &Batch{RunID: runID, Fingerprint: p.Fingerprint()}

	var cause error
	switch {
	case ctx.Err() != nil:
		cause = ctx.Err()
	case len(items) > 0 && int(failed.Load()) == len(items):
		cause = errAllFailed
	}

	if cause != nil {
		log.Error("batch matching degraded", zap.Error(cause))
		batch.Degraded = true
		batch.Error = cause.Error()
		results = make([]Result, len(items))
		for idx, job := range items {
			results[idx] = NeutralResult(job, cause)
		}
	} else {
		rank(results)
	}

	batch.Results = results
	batch.Stats = computeStats(results, e.now().Sub(start).Milliseconds())

	log.Info("batch matching completed",
		zap.Int("total_jobs", batch.Stats.TotalJobs),
		zap.Int("matched_jobs", batch.Stats.MatchedJobs),
		zap.Int("average_score", batch.Stats.AverageScore),
		zap.Int32("failed_jobs", failed.Load()),
		zap.Int64("processing_ms", batch.Stats.ProcessingTimeMs),
	)
	return batch
}

// NeutralBatch returns every job at the neutral score in input order without
// scoring anything.
func NeutralBatch(p *profile.Profile, items []*jobs.Job) *Batch {
	results := make([]Result, len(items))
	for idx, job := range items {
		results[idx] = NeutralResult(job, nil)
	}
	return &Batch{
		RunID:       uuid.NewString(),
		Fingerprint: p.Fingerprint(),
		Results:     results,
		Stats:       computeStats(results, 0),
	}
}

// skillOverlap counts profile skills that contain or are contained by a job
// tag, case-insensitively. Jobs without tags score the neutral value.
func skillOverlap(skills, tags []string) ([]string, int) {
	matching := make([]string, 0)
	lowerTags := lowerAll(tags)
	for _, skill := range skills {
		s := strings.ToLower(skill)
		for _, tag := range lowerTags {
			if strings.Contains(tag, s) || strings.Contains(s, tag) {
				matching = append(matching, skill)
				break
			}
		}
	}

	if len(tags) == 0 {
		return matching, NeutralScore
	}
	score := int(math.Round(float64(len(matching)) / float64(len(tags)) * 100))
	return matching, clampScore(score)
}

// accessibilityFit counts needs offered by some job feature. Profiles without
// needs get full credit.
func accessibilityFit(needs, features []string) ([]string, int) {
	matching := make([]string, 0)
	lowerFeatures := lowerAll(features)
	for _, need := range needs {
		n := strings.ToLower(need)
		for _, feature := range lowerFeatures {
			if strings.Contains(feature, n) {
				matching = append(matching, need)
				break
			}
		}
	}

	if len(needs) == 0 {
		return matching, 100
	}
	score := int(math.Round(float64(len(matching)) / float64(len(needs)) * 100))
	return matching, clampScore(score)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
