// Package submission models publicly submitted schemes awaiting admin review.
package submission

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Status is the review state of a submission.
type Status string

// Status constants.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is supported.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// MaxNotesLength bounds reviewer notes.
const MaxNotesLength = 2000

// Submission is a scheme proposed by a visitor.
type Submission struct {
	ID          string        `json:"id"`
	SchemeData  scheme.Scheme `json:"schemeData"`
	Status      Status        `json:"status"`
	SubmittedAt time.Time     `json:"submittedAt"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`
	ReviewedBy  string        `json:"reviewedBy,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Summary     string        `json:"summary,omitempty"`
}

// New validates the draft and creates a pending submission.
func New(id string, draft scheme.Scheme, now time.Time) (Submission, error) {
	if id == "" {
		return Submission{}, fmt.Errorf("submission id is required")
	}
	draft.Normalize()
	draft.Status = scheme.StatusDraft
	if err := draft.ValidateDraft(); err != nil {
		return Submission{}, err
	}
	return Submission{
		ID:          id,
		SchemeData:  draft,
		Status:      StatusPending,
		SubmittedAt: now.UTC(),
	}, nil
}

// IsPending reports whether the submission still awaits review.
func (s *Submission) IsPending() bool { return s.Status == StatusPending }

// Review returns a copy moved to approved or rejected. Only pending submissions can be reviewed.
func (s Submission) Review(status Status, reviewer, notes string, now time.Time) (Submission, error) {
	if status != StatusApproved && status != StatusRejected {
		return Submission{}, domain.NewValidationError("status", "must be approved or rejected")
	}
	if len(notes) > MaxNotesLength {
		return Submission{}, domain.NewValidationError("notes", "is too long")
	}
	if !s.IsPending() {
		return Submission{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.Status, status)
	}
	reviewedAt := now.UTC()
	s.Status = status
	s.ReviewedAt = &reviewedAt
	s.ReviewedBy = reviewer
	s.Notes = notes
	return s, nil
}

// WithSummary returns a copy carrying a drafted summary.
func (s Submission) WithSummary(summary string) Submission {
	s.Summary = summary
	return s
}
