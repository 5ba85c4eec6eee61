// Package eligibility decides which schemes a profile qualifies for and
// ranks them by relevance.
package eligibility

import (
	"sort"

	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Score contributions. MaxScore is their sum.
const (
	allStatesBonus       = 1
	explicitStateBonus   = 3
	categoryBonus        = 3
	genderBonus          = 1
	unlimitedIncomeBonus = 1

	MaxScore = allStatesBonus + explicitStateBonus + categoryBonus + genderBonus + unlimitedIncomeBonus
)

// Match is an eligible scheme with its relevance score.
type Match struct {
	Scheme scheme.Scheme `json:"scheme"`
	Score  int           `json:"score"`
}

// IsEligible reports whether p satisfies every rule of s.
// Unknown or malformed values fail their own predicate instead of erroring.
func IsEligible(s *scheme.Scheme, p *profile.Profile) bool {
	return stateOK(s, p) &&
		categoryOK(s, p) &&
		p.Age >= s.Rules.MinAge &&
		s.Rules.IncomeMax.Allows(p.Income) &&
		genderOK(s, p)
}

// Score is the additive relevance heuristic, 0..MaxScore. Only relative order matters.
func Score(s *scheme.Scheme, p *profile.Profile) int {
	score := 0
	if s.States.IsAll() {
		score += allStatesBonus
	}
	if s.States.Names(p.State) {
		score += explicitStateBonus
	}
	if s.Category == p.Category {
		score += categoryBonus
	}
	if genderOK(s, p) {
		score += genderBonus
	}
	if s.Rules.IncomeMax.IsUnlimited() {
		score += unlimitedIncomeBonus
	}
	return score
}

// Rank keeps the schemes p is eligible for and orders them by score, highest
// first. Equal scores keep their input order.
func Rank(schemes []scheme.Scheme, p *profile.Profile) []Match {
	matches := make([]Match, 0, len(schemes))
	for i := range schemes {
		s := &schemes[i]
		if !IsEligible(s, p) {
			continue
		}
		matches = append(matches, Match{Scheme: *s, Score: Score(s, p)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func stateOK(s *scheme.Scheme, p *profile.Profile) bool {
	return s.States.Covers(p.State)
}

func categoryOK(s *scheme.Scheme, p *profile.Profile) bool {
	return s.Category == p.Category || s.Category == scheme.CategoryOther
}

func genderOK(s *scheme.Scheme, p *profile.Profile) bool {
	return s.Rules.Gender == scheme.GenderAny || s.Rules.Gender == p.Gender
}
