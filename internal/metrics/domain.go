package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "schemefinder"

// Catalog, matcher and summarizer metrics.
var (
	CatalogSchemes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_schemes",
			Help:      "Published schemes in the current catalog snapshot",
		},
	)

	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_refresh_total",
			Help:      "Catalog snapshot reloads",
		},
		[]string{"result"}, // "ok" / "error" / "unchanged"
	)

	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "match_requests_total",
			Help:      "Eligibility match requests",
		},
		[]string{"category", "sort"},
	)

	MatchEligibleResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "match_eligible_results",
			Help:      "Eligible schemes returned per match request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "submissions_total",
			Help:      "Scheme submissions by outcome",
		},
		[]string{"status"}, // "pending" / "approved" / "rejected"
	)

	SummarizerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "summarizer_requests_total",
			Help:      "Summary generation requests",
		},
		[]string{"model", "status"},
	)

	SummarizerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "summarizer_request_duration_seconds",
			Help:      "Summary generation duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)
)

var registerDomainOnce sync.Once

// RegisterDomainMetrics registers catalog, matcher and summarizer metrics.
// Safe to call more than once.
func RegisterDomainMetrics() {
	registerDomainOnce.Do(func() {
		prometheus.MustRegister(
			CatalogSchemes,
			CatalogRefreshTotal,
			MatchRequestsTotal,
			MatchEligibleResults,
			SubmissionsTotal,
			SummarizerRequestsTotal,
			SummarizerRequestDuration,
		)
	})
}
