package submission

import (
	"context"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// Repository defines the storage contract for submissions.
type Repository interface {
	ListSubmissions(ctx context.Context) ([]domsub.Submission, error)
	GetSubmission(ctx context.Context, id string) (domsub.Submission, error)
	CreateSubmission(ctx context.Context, s *domsub.Submission) error
	UpdateSubmission(ctx context.Context, s *domsub.Submission) error
}

// Publisher turns an approved draft into a stored scheme.
type Publisher interface {
	Create(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error)
	CreateDraft(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error)
	Delete(ctx context.Context, id, actor string) error
}

// Summarizer drafts a short description of a submitted scheme for reviewers.
type Summarizer interface {
	Summarize(ctx context.Context, s scheme.Scheme) (string, error)
}
