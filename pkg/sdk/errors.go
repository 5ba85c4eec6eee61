package schemefinder

import "github.com/kailas-cloud/schemefinder/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrStoreUnavailable = domain.ErrStoreUnavailable
)
