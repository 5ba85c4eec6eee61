package health

import "context"

// StoragePinger checks storage availability.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker reports whether a catalog snapshot can be served.
type CatalogChecker interface {
	Ready(ctx context.Context) error
}

// ProviderChecker checks an optional upstream provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
