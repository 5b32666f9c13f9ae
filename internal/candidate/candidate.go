// Package candidate holds the anonymized candidate profile consumed by the scoring agents.
package candidate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// IDPrefix starts every generated anonymous candidate id.
const IDPrefix = "CAND-"

// Skill is a single claimed skill. Name identifies the skill within a profile.
type Skill struct {
	Name            string     `json:"name" validate:"required"`
	Proficiency     string     `json:"proficiency,omitempty"`
	LastUsed        *time.Time `json:"last_used,omitempty"`
	YearsExperience *float64   `json:"years_experience,omitempty" validate:"omitempty,gte=0"`
	Verified        bool       `json:"verified"`
}

// WorkExperience is a single position in the work history. A nil EndDate means the position is current.
type WorkExperience struct {
	Company     string     `json:"company" validate:"required"`
	Position    string     `json:"position" validate:"required"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	SkillsUsed  []string   `json:"skills_used"`
}

// Profile is the candidate representation passed through the pipeline.
//
// Name, Email and Phone exist for downstream consumers only. The scoring
// agents never read them and they are never logged.
type Profile struct {
	CandidateID    string           `json:"candidate_id" validate:"required"`
	Name           string           `json:"name,omitempty"`
	Email          string           `json:"email,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Skills         []Skill          `json:"skills" validate:"unique=Name,dive"`
	WorkExperience []WorkExperience `json:"work_experience" validate:"dive"`
	GitHubUsername string           `json:"github_username,omitempty"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
}

// NewID returns a fresh anonymous candidate id such as "CAND-1F3A9C2E".
// Eight hex characters can never look like a phone number.
func NewID() string {
	return IDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(workExperienceDates, WorkExperience{})
	return v
}

func workExperienceDates(sl validator.StructLevel) {
	exp := sl.Current().Interface().(WorkExperience)
	if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
		sl.ReportError(exp.EndDate, "EndDate", "end_date", "gtestart", "")
	}
}

// Validate checks the structural invariants of a profile produced by an
// extraction collaborator. It does not look for PII.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("candidate profile is required")
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return describe(verrs)
		}
		return err
	}

	return nil
}

func describe(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "unique":
			msgs = append(msgs, fmt.Sprintf("%s must have unique names", fe.Namespace()))
		case "gtestart":
			msgs = append(msgs, fmt.Sprintf("%s must not be before start date", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid candidate profile: %s", strings.Join(msgs, "; "))
}

// HasGitHub reports whether the profile carries a public code-hosting username.
func (p *Profile) HasGitHub() bool {
	return p != nil && strings.TrimSpace(p.GitHubUsername) != ""
}

// SkillNames returns the claimed skill names in profile order.
func (p *Profile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// ReferencedSkills returns the union of skill names referenced by the work history.
func (p *Profile) ReferencedSkills() map[string]struct{} {
	referenced := make(map[string]struct{})
	for _, exp := range p.WorkExperience {
		for _, name := range exp.SkillsUsed {
			referenced[name] = struct{}{}
		}
	}
	return referenced
}
