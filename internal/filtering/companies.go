package filtering

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/matching"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies creates a filter that removes results by companies configured in the config.
func NewExcludedCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "excluded_companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		for _, c := range cfg.ExcludedCompanies {
			if c = strings.TrimSpace(c); c != "" {
				f.companies = append(f.companies, c)
			}
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, results []matching.Result) ([]matching.Result, Step, error) {
	if len(f.companies) == 0 {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}

	var excluded []string
	out, step := keep(results, func(r matching.Result) bool {
		company := r.Job.GetStringField(jobs.JobCompanyField)
		if slices.ContainsFunc(f.companies, func(c string) bool { return strings.EqualFold(c, company) }) {
			excluded = append(excluded, r.Job.ID)
			return false
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", len(out)),
		)
	}
	return out, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
