// Package profile holds the self-reported attributes a visitor searches with.
package profile

import (
	"math"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Defaults used when a search omits a field.
const (
	DefaultState    = "rajasthan"
	DefaultCategory = scheme.CategoryFarmer
	DefaultGender   = scheme.GenderMale
	DefaultAge      = 25
	DefaultIncome   = 200000
)

// Profile is request-scoped and never persisted.
type Profile struct {
	State    string          `json:"state"`
	Category scheme.Category `json:"category"`
	Gender   scheme.Gender   `json:"gender"`
	Age      int             `json:"age"`
	Income   float64         `json:"income"`
}

// Default returns the profile the results page falls back to.
func Default() Profile {
	return Profile{
		State:    DefaultState,
		Category: DefaultCategory,
		Gender:   DefaultGender,
		Age:      DefaultAge,
		Income:   DefaultIncome,
	}
}

// New validates and creates a Profile. The state id is normalized.
func New(state string, category scheme.Category, gender scheme.Gender, age int, income float64) (Profile, error) {
	p := Profile{
		State:    scheme.NormalizeState(state),
		Category: category,
		Gender:   gender,
		Age:      age,
		Income:   income,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	if p.State == "" || p.State == scheme.AllStatesSentinel {
		return domain.NewValidationError("state", "must be a concrete state")
	}
	if !p.Category.IsValid() {
		return domain.NewValidationError("category", "is not a known category")
	}
	if !p.Gender.IsProfileGender() {
		return domain.NewValidationError("gender", "must be male, female or other")
	}
	if p.Age < 0 {
		return domain.NewValidationError("age", "must not be negative")
	}
	if p.Income < 0 || math.IsNaN(p.Income) || math.IsInf(p.Income, 0) {
		return domain.NewValidationError("income", "must be a non-negative number")
	}
	return nil
}
