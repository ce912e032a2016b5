package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/nexus/internal/matching"
)

type scoreRangeFilter struct {
	toggle
	min int
	max int
}

// NewScoreRange creates a filter that keeps results with min <= score <= max.
// A zero maximum means 100.
func NewScoreRange() Filter {
	return &scoreRangeFilter{max: 100}
}

func (f *scoreRangeFilter) Name() string { return "score_range" }

func (f *scoreRangeFilter) Validate(cfg *Config) error {
	f.min, f.max = 0, 100
	if cfg == nil {
		return nil
	}
	f.min = cfg.MinScore
	if cfg.MaxScore != 0 {
		f.max = cfg.MaxScore
	}
	if f.min < 0 || f.max > 100 {
		return fmt.Errorf("score range must be within 0-100, got %d-%d", f.min, f.max)
	}
	if f.min > f.max {
		return fmt.Errorf("minimum score %d is above maximum %d", f.min, f.max)
	}
	return nil
}

func (f *scoreRangeFilter) Apply(_ context.Context, _ Deps, results []matching.Result) ([]matching.Result, Step, error) {
	out, step := keep(results, func(r matching.Result) bool {
		return r.MatchScore >= f.min && r.MatchScore <= f.max
	})
	return out, step, nil
}

func (f *scoreRangeFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min": strconv.Itoa(f.min), "max": strconv.Itoa(f.max)},
	}
}
