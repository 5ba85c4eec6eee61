package admin

import (
	"context"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// Repository defines the storage contract for schemes.
type Repository interface {
	ListSchemes(ctx context.Context) ([]scheme.Scheme, error)
	GetScheme(ctx context.Context, id string) (scheme.Scheme, error)
	CreateScheme(ctx context.Context, s *scheme.Scheme) error
	UpdateScheme(ctx context.Context, s *scheme.Scheme) error
	DeleteScheme(ctx context.Context, id string) error
}

// SubmissionLister feeds the dashboard counters.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context) ([]submission.Submission, error)
}

// CatalogRefresher reloads the public snapshot after a write.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}
