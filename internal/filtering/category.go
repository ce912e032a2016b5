package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/matching"
)

const (
	CategoryAll        = "all"
	CategoryRemote     = "remote"
	CategoryFlexible   = "flexible"
	CategoryAccessible = "accessible"
)

type categoryFilter struct {
	toggle
	category string
}

// NewCategory creates a filter for the job categories shown in the job
// browser: all, remote, flexible and accessible. Domain names accepted by
// jobs.IsDomain work as well.
func NewCategory() Filter {
	return &categoryFilter{category: CategoryAll}
}

func (f *categoryFilter) Name() string { return "category" }

func (f *categoryFilter) Validate(cfg *Config) error {
	f.category = CategoryAll
	if cfg == nil {
		return nil
	}
	category := strings.ToLower(strings.TrimSpace(cfg.Category))
	switch {
	case category == "":
		return nil
	case category == CategoryAll, category == CategoryRemote, category == CategoryFlexible, category == CategoryAccessible:
	case jobs.IsDomain(category):
	default:
		return fmt.Errorf("unknown category %q", cfg.Category)
	}
	f.category = category
	return nil
}

func (f *categoryFilter) Apply(_ context.Context, _ Deps, results []matching.Result) ([]matching.Result, Step, error) {
	if f.category == CategoryAll {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}
	out, step := keep(results, func(r matching.Result) bool {
		return inCategory(r.Job, f.category)
	})
	return out, step, nil
}

func inCategory(job *jobs.Job, category string) bool {
	switch category {
	case CategoryRemote:
		return strings.Contains(strings.ToLower(job.Location), "remote") || job.HasFeature("remote")
	case CategoryFlexible:
		return job.HasFeature("flexible")
	case CategoryAccessible:
		return len(job.Accessibility) > 0
	default:
		return job.InDomain(category)
	}
}

func (f *categoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"category": f.category},
	}
}
