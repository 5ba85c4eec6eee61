// Package match implements the results page: eligibility, ranking and refinement.
package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/eligibility"
	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

// Sort is the result ordering.
type Sort string

// Sort orders.
const (
	SortBest Sort = "best"
	SortName Sort = "name"
)

// AllTags disables the tag filter.
const AllTags = "all"

// ParseSort maps a query value to a Sort. Empty means SortBest.
func ParseSort(v string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(v))) {
	case "", SortBest:
		return SortBest, nil
	case SortName:
		return SortName, nil
	}
	return "", domain.NewValidationError("sort", "must be best or name")
}

// Query is one results request.
type Query struct {
	Profile profile.Profile
	Text    string
	Tag     string
	Sort    Sort
}

// Result is the refined, ordered match list.
type Result struct {
	Profile profile.Profile
	Matches []eligibility.Match
	// Tags are the sorted tags across every eligible scheme, before text and tag refinement.
	Tags []string
	// Eligible counts eligible schemes before refinement.
	Eligible int
}

// Service ranks the catalog for a profile.
type Service struct {
	catalog Catalog
}

// New creates a match service.
func New(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Results runs the matcher and applies the optional text, tag and sort refinements.
func (s *Service) Results(ctx context.Context, q Query) (Result, error) {
	if err := q.Profile.Validate(); err != nil {
		return Result{}, err
	}
	order := q.Sort
	if order == "" {
		order = SortBest
	}

	schemes, err := s.catalog.Published(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}

	ranked := eligibility.Rank(schemes, &q.Profile)
	tags := collectTags(ranked)

	text := strings.ToLower(strings.TrimSpace(q.Text))
	tag := strings.TrimSpace(q.Tag)
	refined := make([]eligibility.Match, 0, len(ranked))
	for _, m := range ranked {
		if text != "" && !matchesText(&m, text) {
			continue
		}
		if tag != "" && tag != AllTags && !m.Scheme.HasTag(tag) {
			continue
		}
		refined = append(refined, m)
	}

	if order == SortName {
		sort.SliceStable(refined, func(i, j int) bool {
			return strings.ToLower(refined[i].Scheme.Name) < strings.ToLower(refined[j].Scheme.Name)
		})
	}

	metrics.MatchRequestsTotal.WithLabelValues(string(q.Profile.Category), string(order)).Inc()
	metrics.MatchEligibleResults.Observe(float64(len(refined)))

	return Result{
		Profile:  q.Profile,
		Matches:  refined,
		Tags:     tags,
		Eligible: len(ranked),
	}, nil
}

func matchesText(m *eligibility.Match, text string) bool {
	hay := m.Scheme.Name + " " + m.Scheme.Summary + " " + strings.Join(m.Scheme.Tags, " ")
	return strings.Contains(strings.ToLower(hay), text)
}

func collectTags(matches []eligibility.Match) []string {
	set := make(map[string]struct{})
	for i := range matches {
		for _, t := range matches[i].Scheme.Tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
