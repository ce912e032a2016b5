package filtering

import (
	"context"
	"strings"

	"github.com/spigell/nexus/internal/matching"
)

type tagsFilter struct {
	toggle
	tags []string
}

// NewTags creates a filter that keeps results where some job tag contains
// some configured tag, case-insensitively. No tags keeps everything.
func NewTags() Filter {
	return &tagsFilter{}
}

func (f *tagsFilter) Name() string { return "tags" }

func (f *tagsFilter) Validate(cfg *Config) error {
	f.tags = nil
	if cfg == nil {
		return nil
	}
	for _, tag := range cfg.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			f.tags = append(f.tags, tag)
		}
	}
	return nil
}

func (f *tagsFilter) Apply(_ context.Context, _ Deps, results []matching.Result) ([]matching.Result, Step, error) {
	if len(f.tags) == 0 {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}
	out, step := keep(results, func(r matching.Result) bool {
		for _, jobTag := range r.Job.Tags {
			jobTag = strings.ToLower(jobTag)
			for _, tag := range f.tags {
				if strings.Contains(jobTag, tag) {
					return true
				}
			}
		}
		return false
	})
	return out, step, nil
}

func (f *tagsFilter) Status() Status {
	details := map[string]string{}
	if len(f.tags) > 0 {
		details["tags"] = strings.Join(f.tags, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
