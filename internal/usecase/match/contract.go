package match

import (
	"context"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Catalog provides the published schemes to match against.
type Catalog interface {
	Published(ctx context.Context) ([]scheme.Scheme, error)
}
