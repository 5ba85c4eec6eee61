package schemefinder

import (
	"github.com/kailas-cloud/schemefinder/internal/domain/eligibility"
	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Scheme is a published welfare scheme.
type Scheme = scheme.Scheme

// Profile is the visitor data a match runs against.
type Profile = profile.Profile

// Match is an eligible scheme with its relevance score.
type Match = eligibility.Match

// Category of a scheme or profile.
type Category = scheme.Category

// Gender of a profile, or the gender rule of a scheme.
type Gender = scheme.Gender

// Categories.
const (
	CategoryFarmer  = scheme.CategoryFarmer
	CategoryStudent = scheme.CategoryStudent
	CategoryHealth  = scheme.CategoryHealth
	CategoryWomen   = scheme.CategoryWomen
	CategorySenior  = scheme.CategorySenior
	CategoryJobs    = scheme.CategoryJobs
	CategoryOther   = scheme.CategoryOther
)

// Genders.
const (
	GenderMale   = scheme.GenderMale
	GenderFemale = scheme.GenderFemale
	GenderOther  = scheme.GenderOther
)

// MaxScore is the highest score a match can get.
const MaxScore = eligibility.MaxScore

// DefaultProfile returns the profile used when a search leaves every field empty.
func DefaultProfile() Profile { return profile.Default() }

// Filter narrows a scheme listing. Empty fields match everything.
type Filter struct {
	Category Category
	State    string
}

// MatchResult is a ranked, refined list of eligible schemes.
type MatchResult struct {
	Matches []Match
	// Tags across every eligible scheme, before text and tag refinement.
	Tags []string
	// Eligible counts eligible schemes before refinement.
	Eligible int
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}
