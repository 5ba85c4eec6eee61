package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Matching still works from the last snapshot.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	storage    StoragePinger
	catalog    CatalogChecker
	summarizer ProviderChecker
}

// New creates a Service. summarizer can be nil.
func New(storage StoragePinger, catalog CatalogChecker, summarizer ProviderChecker) *Service {
	return &Service{storage: storage, catalog: catalog, summarizer: summarizer}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["storage"] = result(s.storage.Ping(ctx))
	checks["catalog"] = result(s.catalog.Ready(ctx))
	if s.summarizer != nil {
		checks["summarizer"] = result(s.summarizer.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["catalog"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
