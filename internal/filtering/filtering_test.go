package filtering

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/matching"
)

func sampleResults() []matching.Result {
	return []matching.Result{
		{MatchScore: 92, Job: &jobs.Job{ID: "1", Company: "Acme", Location: "Remote / Bangalore", Tags: []string{"React", "Node.js"}, Accessibility: []string{"Flexible Hours"}}},
		{MatchScore: 75, Job: &jobs.Job{ID: "2", Company: "Globex", Location: "Hybrid / Mumbai", Tags: []string{"Python", "SQL"}, Accessibility: []string{"Remote Work Available"}}},
		{MatchScore: 64, Job: &jobs.Job{ID: "3", Company: "Initech", Location: "Bangalore", Title: "Product Designer", Tags: []string{"Figma"}, Accessibility: []string{}}},
		{MatchScore: 40, Job: &jobs.Job{ID: "4", Company: "acme", Location: "Delhi", Tags: []string{"Java"}, Accessibility: []string{"Ergonomic Setup"}}},
	}
}

func ids(results []matching.Result) string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Job.ID)
	}
	return strings.Join(out, ",")
}

func TestRunFilters(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{name: "no config keeps all", cfg: &Config{}, want: "1,2,3,4"},
		{name: "score range", cfg: &Config{MinScore: 60, MaxScore: 80}, want: "2,3"},
		{name: "tags substring", cfg: &Config{Tags: []string{"node", "sq"}}, want: "1,2"},
		{name: "location", cfg: &Config{Location: "bangalore"}, want: "1,3"},
		{name: "remote category", cfg: &Config{Category: "remote"}, want: "1,2"},
		{name: "flexible category", cfg: &Config{Category: "Flexible"}, want: "1"},
		{name: "accessible category", cfg: &Config{Category: "accessible"}, want: "1,2,4"},
		{name: "domain category", cfg: &Config{Category: "design"}, want: "3"},
		{name: "excluded companies", cfg: &Config{ExcludedCompanies: []string{"ACME"}}, want: "2,3"},
		{name: "top", cfg: &Config{Top: 2}, want: "1,2"},
		{name: "top after filters", cfg: &Config{Location: "bangalore", Top: 1}, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := sampleResults()
			got, err := Run(context.Background(), tt.cfg, Deps{}, Default(), input)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if ids(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, ids(got))
			}
			if len(input) != 4 {
				t.Fatalf("input must not be modified")
			}
		})
	}
}

func TestRunValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "min above max", cfg: &Config{MinScore: 90, MaxScore: 10}},
		{name: "out of range", cfg: &Config{MaxScore: 150}},
		{name: "unknown category", cfg: &Config{Category: "space"}},
		{name: "negative top", cfg: &Config{Top: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), tt.cfg, Deps{}, Default(), sampleResults()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	steps := Default()
	DisableByName(steps, "location", "requested")

	got, err := Run(context.Background(), &Config{Location: "delhi"}, Deps{Logger: zap.New(core)}, steps, sampleResults())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if ids(got) != "1,2,3,4" {
		t.Fatalf("expected disabled filter to be skipped, got %s", ids(got))
	}
	if logs.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected one disabled entry")
	}

	stepLogs := logs.FilterMessage("filter step").All()
	if len(stepLogs) != len(steps)-1 {
		t.Fatalf("expected %d step entries, got %d", len(steps)-1, len(stepLogs))
	}
}

func TestExcludedCompaniesLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := NewExcludedCompanies()
	if err := f.Validate(&Config{ExcludedCompanies: []string{"Globex"}}); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	out, step, err := f.Apply(context.Background(), Deps{Logger: zap.New(core)}, sampleResults())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if step.Dropped != 1 || step.Left != 3 || len(out) != 3 {
		t.Fatalf("unexpected step: %+v", step)
	}

	entries := logs.FilterMessage("excluding jobs by companies").All()
	if len(entries) != 1 {
		t.Fatalf("expected single log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["jobs_left"] != int64(3) {
		t.Fatalf("unexpected jobs_left: %v", fields["jobs_left"])
	}
}

func TestDescribe(t *testing.T) {
	steps := Default()
	if _, err := Run(context.Background(), &Config{MinScore: 10, Category: "remote"}, Deps{}, steps, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	DisableByName(steps, "top", "not needed")

	statuses := Describe(steps)
	if len(statuses) != len(steps) {
		t.Fatalf("expected %d statuses, got %d", len(steps), len(statuses))
	}
	byName := map[string]Status{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	if byName["score_range"].Details["min"] != "10" {
		t.Fatalf("unexpected score_range details: %v", byName["score_range"].Details)
	}
	if byName["category"].Details["category"] != "remote" {
		t.Fatalf("unexpected category details: %v", byName["category"].Details)
	}
	if top := byName["top"]; top.Enabled || top.Reason != "not needed" {
		t.Fatalf("unexpected top status: %+v", top)
	}
}
