package scheme

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/schemefinder/internal/domain"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Field length limits.
const (
	MaxNameLength    = 200
	MaxSummaryLength = 2000
	MaxSlugLength    = 120
)

// Rules is the eligibility predicate data of a scheme.
type Rules struct {
	MinAge    int         `json:"minAge"`
	IncomeMax IncomeLimit `json:"incomeMax"`
	Gender    Gender      `json:"gender"`
}

// Scheme is a welfare scheme record. Treated as an immutable value once loaded.
type Scheme struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Summary   string     `json:"summary"`
	Category  Category   `json:"category"`
	States    StateScope `json:"states"`
	Tags      []string   `json:"tags"`
	Benefits  []string   `json:"benefits"`
	Documents []string   `json:"documents"`
	ApplyLink string     `json:"applyLink"`
	Rules     Rules      `json:"rules"`
	Status    Status     `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero"`
	CreatedBy string     `json:"createdBy,omitempty"`
}

// IsPublished reports whether the scheme is publicly visible.
// Records without a status (static dataset) count as published.
func (s *Scheme) IsPublished() bool {
	return s.Status == "" || s.Status == StatusPublished
}

// HasTag reports whether the scheme carries tag.
func (s *Scheme) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalize fills derived fields: slug from name, default gender, default status.
func (s *Scheme) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Summary = strings.TrimSpace(s.Summary)
	s.Slug = strings.TrimSpace(s.Slug)
	if s.Slug == "" {
		s.Slug = Slugify(s.Name)
	}
	if s.Rules.Gender == "" {
		s.Rules.Gender = GenderAny
	}
	if s.Status == "" {
		s.Status = StatusPublished
	}
}

// Validate checks a scheme before it is stored as a publishable record.
func (s *Scheme) Validate() error {
	if err := s.ValidateDraft(); err != nil {
		return err
	}
	if s.Slug == "" {
		return domain.NewValidationError("slug", "is required")
	}
	if len(s.Slug) > MaxSlugLength || !slugRegex.MatchString(s.Slug) {
		return domain.NewValidationError("slug", "must be lower-case words joined by hyphens")
	}
	if len(s.Summary) > MaxSummaryLength {
		return domain.NewValidationError("summary", "is too long")
	}
	if s.States.IsZero() {
		return domain.NewValidationError("states", "must be \"all\" or at least one state")
	}
	if s.ApplyLink != "" && !isHTTPURL(s.ApplyLink) {
		return domain.NewValidationError("applyLink", "must be an http(s) URL")
	}
	if s.Rules.MinAge < 0 {
		return domain.NewValidationError("rules.minAge", "must not be negative")
	}
	if amount, capped := s.Rules.IncomeMax.Amount(); capped && amount < 0 {
		return domain.NewValidationError("rules.incomeMax", "must not be negative")
	}
	if !s.Rules.Gender.IsValid() {
		return domain.NewValidationError("rules.gender", "must be male, female, other or any")
	}
	if s.Status != "" && !s.Status.IsValid() {
		return domain.NewValidationError("status", "must be draft or published")
	}
	return nil
}

// ValidateDraft checks the minimum a public submission must carry.
func (s *Scheme) ValidateDraft() error {
	if s.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if len(s.Name) > MaxNameLength {
		return domain.NewValidationError("name", "is too long")
	}
	if !s.Category.IsValid() {
		return domain.NewValidationError("category", "is not a known category")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
