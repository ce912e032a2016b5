package jobs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed catalog.json
var defaultCatalog []byte

var ErrDuplicateID = errors.New("duplicate job id")

// Domain keyword groups used by ByDomain.
var domains = map[string][]string{
	"engineering": {"React", "Node.js", "Python", "Java", "JavaScript"},
	"design":      {"Figma", "UI Design", "UX Research", "Adobe"},
	"data":        {"Data", "Machine Learning", "Python", "SQL", "Analytics"},
	"content":     {"Content", "Writing", "Marketing", "SEO"},
	"management":  {"Product", "Project", "Manager", "Leadership"},
}

// Catalog is an ordered, read-only collection of jobs.
type Catalog struct {
	Items []*Job
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a JSON array of jobs from path.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	c, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Load decodes and validates a JSON array of jobs.
func Load(r io.Reader) (*Catalog, error) {
	var items []*Job
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return New(items)
}

// New validates items and builds a catalog. Ids must be unique.
func New(items []*Job) (*Catalog, error) {
	seen := make(map[string]struct{}, len(items))
	for idx, job := range items {
		if job == nil {
			return nil, fmt.Errorf("job #%d is null", idx)
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("job #%d (%s): %w", idx, job.ID, err)
		}
		if _, ok := seen[job.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, job.ID)
		}
		seen[job.ID] = struct{}{}
	}
	return &Catalog{Items: items}, nil
}

func (c *Catalog) Len() int {
	return len(c.Items)
}

func (c *Catalog) FindByID(id string) *Job {
	for _, job := range c.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, job := range c.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Remote returns jobs whose location mentions remote work.
func (c *Catalog) Remote() []*Job {
	return c.filter(func(j *Job) bool {
		return strings.Contains(strings.ToLower(j.Location), "remote")
	})
}

// Accessible returns jobs that list at least one accessibility feature.
func (c *Catalog) Accessible() []*Job {
	return c.filter(func(j *Job) bool { return len(j.Accessibility) > 0 })
}

// ByDomain returns jobs matching the named domain. Unknown domains yield an
// empty list.
func (c *Catalog) ByDomain(name string) []*Job {
	return c.filter(func(j *Job) bool { return j.InDomain(name) })
}

// InDomain reports whether the job tags or title mention any keyword of the
// named domain.
func (j *Job) InDomain(name string) bool {
	title := strings.ToLower(j.Title)
	for _, keyword := range domains[strings.ToLower(name)] {
		keyword = strings.ToLower(keyword)
		if strings.Contains(title, keyword) {
			return true
		}
		for _, tag := range j.Tags {
			if strings.Contains(strings.ToLower(tag), keyword) {
				return true
			}
		}
	}
	return false
}

// IsDomain reports whether name is accepted by ByDomain.
func IsDomain(name string) bool {
	_, ok := domains[strings.ToLower(name)]
	return ok
}

// Domains lists the names accepted by ByDomain.
func Domains() []string {
	return []string{"engineering", "design", "data", "content", "management"}
}

func (c *Catalog) filter(keep func(*Job) bool) []*Job {
	out := make([]*Job, 0)
	for _, job := range c.Items {
		if keep(job) {
			out = append(out, job)
		}
	}
	return out
}

// ReportByCompany groups a short description of each job by company.
func (c *Catalog) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range c.Items {
		report[job.Company] = append(report[job.Company], map[string]string{
			"id":            job.ID,
			"title":         job.Title,
			"location":      job.Location,
			"salary":        job.Salary,
			"type":          job.Type,
			"tags":          strings.Join(job.Tags, ", "),
			"accessibility": strings.Join(job.Accessibility, ", "),
		})
	}
	return report
}

func (c *Catalog) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
