package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/nexus/internal/matching"
)

type topFilter struct {
	toggle
	n int
}

// NewTop creates a filter that keeps the first n results. Zero keeps all.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Validate(cfg *Config) error {
	f.n = 0
	if cfg == nil {
		return nil
	}
	if cfg.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", cfg.Top)
	}
	f.n = cfg.Top
	return nil
}

func (f *topFilter) Apply(_ context.Context, _ Deps, results []matching.Result) ([]matching.Result, Step, error) {
	if f.n == 0 || f.n >= len(results) {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}
	out := append([]matching.Result(nil), results[:f.n]...)
	return out, Step{Initial: len(results), Dropped: len(results) - f.n, Left: f.n}, nil
}

func (f *topFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"n": strconv.Itoa(f.n)}}
}
