package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// StorageKey is the document key of the persisted profile.
const StorageKey = "nexus-user-profile"

// MinBioLength is the bio length a profile needs to be matched.
const MinBioLength = 20

var (
	ErrEmptySkill     = errors.New("skill is empty")
	ErrDuplicateSkill = errors.New("skill already exists")
	ErrUnknownField   = errors.New("unknown profile field")
)

var validate = validator.New()

// Profile describes the candidate. Skills keep insertion order and never
// contain duplicates.
type Profile struct {
	Name           string   `json:"name" mapstructure:"name"`
	Skills         []string `json:"skills" mapstructure:"skills" validate:"unique,dive,required"`
	Experience     string   `json:"experience" mapstructure:"experience" validate:"omitempty,oneof=0-1 1-3 3-5 5-8 8+"`
	Accessibility  []string `json:"accessibility" mapstructure:"accessibility" validate:"unique,dive,oneof=screen-reader remote flexible-hours sign-language mobility mental-health"`
	Location       string   `json:"location" mapstructure:"location"`
	Salary         string   `json:"salary" mapstructure:"salary"`
	Bio            string   `json:"bio" mapstructure:"bio"`
	ProfileCreated bool     `json:"profileCreated" mapstructure:"profileCreated"`
}

// Default returns an empty profile with non-nil lists.
func Default() Profile {
	return Profile{Skills: []string{}, Accessibility: []string{}}
}

// Normalize replaces nil lists with empty ones.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Accessibility == nil {
		p.Accessibility = []string{}
	}
}

// Check validates the structure of the profile: enumerated values and unique lists.
func (p *Profile) Check() error {
	return validate.Struct(p)
}

// IsMatchEligible reports whether the profile carries enough data for matching.
func (p *Profile) IsMatchEligible() bool {
	return len(p.Skills) > 0 && utf8.RuneCountInString(p.Bio) >= MinBioLength
}

// Validate returns human readable problems that keep the profile from being complete.
func (p *Profile) Validate() []string {
	var problems []string
	if len(p.Skills) == 0 {
		problems = append(problems, "Please add at least one skill")
	}
	if utf8.RuneCountInString(strings.TrimSpace(p.Bio)) < MinBioLength {
		problems = append(problems, fmt.Sprintf("Bio should be at least %d characters", MinBioLength))
	}
	if p.Experience == "" {
		problems = append(problems, "Please select your experience level")
	}
	return problems
}

// Completeness returns the weighted share of filled fields, 0-100.
func (p *Profile) Completeness() int {
	weights := []struct {
		ok     bool
		weight int
	}{
		{len(p.Skills) > 0, 20},
		{utf8.RuneCountInString(p.Bio) >= MinBioLength, 30},
		{p.Experience != "", 20},
		{len(p.Accessibility) > 0, 10},
		{p.Location != "", 10},
		{p.Salary != "", 10},
	}
	total := 0
	for _, w := range weights {
		if w.ok {
			total += w.weight
		}
	}
	return total
}

type Summary struct {
	SkillCount       int  `json:"skillCount"`
	HasExperience    bool `json:"hasExperience"`
	HasAccessibility bool `json:"hasAccessibility"`
	HasLocation      bool `json:"hasLocation"`
	HasSalary        bool `json:"hasSalary"`
	HasBio           bool `json:"hasBio"`
	Completeness     int  `json:"completeness"`
}

func (p *Profile) Summary() Summary {
	return Summary{
		SkillCount:       len(p.Skills),
		HasExperience:    p.Experience != "",
		HasAccessibility: len(p.Accessibility) > 0,
		HasLocation:      p.Location != "",
		HasSalary:        p.Salary != "",
		HasBio:           p.Bio != "",
		Completeness:     p.Completeness(),
	}
}

// AddSkill appends a trimmed skill.
func (p *Profile) AddSkill(skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return ErrEmptySkill
	}
	if slices.Contains(p.Skills, skill) {
		return fmt.Errorf("%w: %s", ErrDuplicateSkill, skill)
	}
	p.Skills = append(p.Skills, skill)
	return nil
}

// RemoveSkill drops skill and reports whether it was present.
func (p *Profile) RemoveSkill(skill string) bool {
	idx := slices.Index(p.Skills, skill)
	if idx < 0 {
		return false
	}
	p.Skills = slices.Delete(p.Skills, idx, idx+1)
	return true
}

// ToggleAccessibility adds the need when absent and removes it otherwise.
// It returns true when the need is present afterwards.
func (p *Profile) ToggleAccessibility(need string) bool {
	if idx := slices.Index(p.Accessibility, need); idx >= 0 {
		p.Accessibility = slices.Delete(p.Accessibility, idx, idx+1)
		return false
	}
	p.Accessibility = append(p.Accessibility, need)
	return true
}

// SetField updates a single scalar field by its JSON name. List fields take
// comma separated values.
func (p *Profile) SetField(name, value string) error {
	switch name {
	case "name":
		p.Name = value
	case "bio":
		p.Bio = value
	case "experience":
		p.Experience = value
	case "location":
		p.Location = value
	case "salary":
		p.Salary = value
	case "skills":
		p.Skills = splitList(value)
	case "accessibility":
		p.Accessibility = splitList(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// Merge overlays the given fields on the profile and marks it as created.
func (p *Profile) Merge(fields map[string]any) error {
	next := *p
	next.Skills = slices.Clone(p.Skills)
	next.Accessibility = slices.Clone(p.Accessibility)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &next,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}

	next.ProfileCreated = true
	next.Normalize()
	*p = next
	return nil
}

// Text is the embedding input for the profile.
func (p *Profile) Text() string {
	parts := []string{p.Bio, strings.Join(p.Skills, ", "), p.Experience}
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ". ")
}

// Fingerprint summarizes the fields that affect matching.
func (p *Profile) Fingerprint() string {
	key := struct {
		Skills        []string `json:"skills"`
		Bio           string   `json:"bio"`
		Accessibility []string `json:"accessibility"`
	}{
		Skills:        p.Skills,
		Bio:           p.Bio,
		Accessibility: p.Accessibility,
	}
	if key.Skills == nil {
		key.Skills = []string{}
	}
	if key.Accessibility == nil {
		key.Accessibility = []string{}
	}

	// Marshalling strings and string slices cannot fail.
	data, _ := json.Marshal(key)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Export renders the profile as indented JSON.
func (p *Profile) Export() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Import decodes a profile over the defaults and validates its structure.
func Import(data []byte) (Profile, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p.Normalize()
	if err := p.Check(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}
