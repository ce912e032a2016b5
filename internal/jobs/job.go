package jobs

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	JobIDField      = "ID"
	JobCompanyField = "Company"
)

var validate = validator.New()

// Job is a single posting from the catalog.
type Job struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	Salary        string   `json:"salary"`
	Type          string   `json:"type"`
	Experience    string   `json:"experience"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags" validate:"required"`
	Accessibility []string `json:"accessibility" validate:"required"`
}

// Validate checks the job at the data boundary. Tags and accessibility must
// be present, empty lists are allowed.
func (j *Job) Validate() error {
	return validate.Struct(j)
}

// Text is the embedding input for the job.
func (j *Job) Text() string {
	return joinNonEmpty(j.Title, j.Company, j.Description, strings.Join(j.Tags, ", "))
}

func (j *Job) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return j.ID
	case JobCompanyField:
		return j.Company
	default:
		return ""
	}
}

// HasFeature reports whether any accessibility feature contains needle, case-insensitively.
func (j *Job) HasFeature(needle string) bool {
	needle = strings.ToLower(needle)
	for _, feature := range j.Accessibility {
		if strings.Contains(strings.ToLower(feature), needle) {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ". ")
}
