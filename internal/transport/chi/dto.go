package chi

import (
	"github.com/kailas-cloud/schemefinder/internal/domain/eligibility"
	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeAlreadyExists      ErrorCode = "already_exists"
	ErrorCodeInvalidTransition  ErrorCode = "invalid_transition"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeForbidden          ErrorCode = "forbidden"
	ErrorCodeStoreUnavailable   ErrorCode = "store_unavailable"
	ErrorCodeSummarizerDisabled ErrorCode = "summarizer_disabled"
	ErrorCodeSummarizerError    ErrorCode = "summarizer_error"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// RulesRequest is the eligibility rule block of a scheme write.
type RulesRequest struct {
	MinAge    int      `json:"minAge" validate:"min=0,max=150"`
	IncomeMax *float64 `json:"incomeMax" validate:"omitempty,min=0"`
	Gender    string   `json:"gender" validate:"omitempty,oneof=male female other any"`
}

// SchemeRequest is the body of admin scheme create and update.
type SchemeRequest struct {
	ID        string       `json:"id" validate:"omitempty,max=120"`
	Slug      string       `json:"slug" validate:"omitempty,max=120"`
	Name      string       `json:"name" validate:"required,max=200"`
	Summary   string       `json:"summary" validate:"max=2000"`
	Category  string       `json:"category" validate:"required,oneof=farmer student health women senior jobs other"`
	States    []string     `json:"states" validate:"required,min=1,max=40,dive,required,max=64"`
	Tags      []string     `json:"tags" validate:"max=30,dive,required,max=40"`
	Benefits  []string     `json:"benefits" validate:"max=50,dive,max=500"`
	Documents []string     `json:"documents" validate:"max=50,dive,max=300"`
	ApplyLink string       `json:"applyLink" validate:"omitempty,url,max=2048"`
	Rules     RulesRequest `json:"rules"`
	Status    string       `json:"status" validate:"omitempty,oneof=draft published"`
}

// DraftRequest is a visitor-submitted scheme. Only name and category are required.
type DraftRequest struct {
	Name      string        `json:"name" validate:"required,max=200"`
	Summary   string        `json:"summary" validate:"max=2000"`
	Category  string        `json:"category" validate:"required,oneof=farmer student health women senior jobs other"`
	States    []string      `json:"states" validate:"max=40,dive,required,max=64"`
	Tags      []string      `json:"tags" validate:"max=30,dive,required,max=40"`
	Benefits  []string      `json:"benefits" validate:"max=50,dive,max=500"`
	Documents []string      `json:"documents" validate:"max=50,dive,max=300"`
	ApplyLink string        `json:"applyLink" validate:"omitempty,url,max=2048"`
	Rules     *RulesRequest `json:"rules"`
}

// SubmissionRequest is the body of POST /submissions.
type SubmissionRequest struct {
	SchemeData *DraftRequest `json:"schemeData" validate:"required"`
}

// ReviewRequest is the body of PATCH /admin/submissions/{id}.
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// ResultsParams are the query parameters of GET /results. Nil means default.
type ResultsParams struct {
	State    *string
	Category *string
	Gender   *string
	Age      *int
	Income   *float64
	Q        *string
	Tag      *string
	Sort     *string
}

// SchemeListResponse is the body of GET /schemes.
type SchemeListResponse struct {
	Schemes    []scheme.Scheme   `json:"schemes"`
	States     []string          `json:"states"`
	Categories []scheme.Category `json:"categories"`
}

// SchemeItemsResponse wraps an admin scheme list.
type SchemeItemsResponse struct {
	Items []scheme.Scheme `json:"items"`
}

// SubmissionItemsResponse wraps a submission list.
type SubmissionItemsResponse struct {
	Items []domsub.Submission `json:"items"`
}

// ResultsResponse is the body of GET /results.
type ResultsResponse struct {
	Profile  profile.Profile     `json:"profile"`
	Schemes  []eligibility.Match `json:"schemes"`
	Tags     []string            `json:"tags"`
	Total    int                 `json:"total"`
	Eligible int                 `json:"eligible"`
	MaxScore int                 `json:"maxScore"`
}

// CreatedResponse acknowledges a created resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (r *RulesRequest) toDomain() scheme.Rules {
	if r == nil {
		return scheme.Rules{}
	}
	rules := scheme.Rules{
		MinAge: r.MinAge,
		Gender: scheme.Gender(r.Gender),
	}
	if r.IncomeMax != nil {
		rules.IncomeMax = scheme.Capped(*r.IncomeMax)
	}
	return rules
}

func (r *SchemeRequest) toDomain() scheme.Scheme {
	return scheme.Scheme{
		ID:        r.ID,
		Slug:      r.Slug,
		Name:      r.Name,
		Summary:   r.Summary,
		Category:  scheme.Category(r.Category),
		States:    scheme.SpecificStates(r.States...),
		Tags:      nonNil(r.Tags),
		Benefits:  nonNil(r.Benefits),
		Documents: nonNil(r.Documents),
		ApplyLink: r.ApplyLink,
		Rules:     r.Rules.toDomain(),
		Status:    scheme.Status(r.Status),
	}
}

func (r *DraftRequest) toDomain() scheme.Scheme {
	return scheme.Scheme{
		Name:      r.Name,
		Summary:   r.Summary,
		Category:  scheme.Category(r.Category),
		States:    scheme.SpecificStates(r.States...),
		Tags:      nonNil(r.Tags),
		Benefits:  nonNil(r.Benefits),
		Documents: nonNil(r.Documents),
		ApplyLink: r.ApplyLink,
		Rules:     r.Rules.toDomain(),
	}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
