package filtering

import (
	"context"
	"strings"

	"github.com/spigell/nexus/internal/matching"
)

type locationFilter struct {
	toggle
	location string
}

// NewLocation creates a filter that keeps results whose job location contains
// the configured one.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate(cfg *Config) error {
	f.location = ""
	if cfg != nil {
		f.location = strings.ToLower(strings.TrimSpace(cfg.Location))
	}
	return nil
}

func (f *locationFilter) Apply(_ context.Context, _ Deps, results []matching.Result) ([]matching.Result, Step, error) {
	if f.location == "" {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}
	out, step := keep(results, func(r matching.Result) bool {
		return strings.Contains(strings.ToLower(r.Job.Location), f.location)
	})
	return out, step, nil
}

func (f *locationFilter) Status() Status {
	details := map[string]string{}
	if f.location != "" {
		details["location"] = f.location
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
