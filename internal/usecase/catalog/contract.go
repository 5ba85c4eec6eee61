package catalog

import (
	"context"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Repository is the read side of scheme storage.
type Repository interface {
	ListSchemes(ctx context.Context) ([]scheme.Scheme, error)
	// Revision changes whenever the stored catalog changes.
	Revision(ctx context.Context) (int64, error)
}
