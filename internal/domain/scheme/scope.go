package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AllStatesSentinel is the wire value meaning "available nationwide".
const AllStatesSentinel = "all"

// StateScope is where a scheme is available: nationwide, a set of named
// states, or both (legacy records list "all" next to explicit states).
type StateScope struct {
	all    bool
	states []string
}

// AllStates returns a nationwide scope. Extra states are kept as explicit
// mentions and still earn the explicit-state ranking bonus.
func AllStates(extra ...string) StateScope {
	s := SpecificStates(extra...)
	s.all = true
	return s
}

// SpecificStates returns a scope limited to the given state ids.
// Ids are normalized and de-duplicated, first-seen order is kept.
func SpecificStates(ids ...string) StateScope {
	var s StateScope
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = NormalizeState(id)
		if id == "" || seen[id] {
			continue
		}
		if id == AllStatesSentinel {
			s.all = true
			continue
		}
		seen[id] = true
		s.states = append(s.states, id)
	}
	return s
}

// NormalizeState lower-cases and trims a state identifier.
func NormalizeState(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// IsAll reports whether the scope is nationwide.
func (s StateScope) IsAll() bool { return s.all }

// IsZero reports whether the scope names nothing at all.
func (s StateScope) IsZero() bool { return !s.all && len(s.states) == 0 }

// Names reports whether the state is listed explicitly.
func (s StateScope) Names(state string) bool {
	state = NormalizeState(state)
	if state == "" {
		return false
	}
	for _, st := range s.states {
		if st == state {
			return true
		}
	}
	return false
}

// Covers reports whether a resident of state can use the scheme.
func (s StateScope) Covers(state string) bool {
	return s.all || s.Names(state)
}

// States returns the explicit state ids (never the sentinel).
func (s StateScope) States() []string {
	out := make([]string, len(s.states))
	copy(out, s.states)
	return out
}

// Values returns the wire form: the sentinel first when nationwide, then explicit states.
func (s StateScope) Values() []string {
	out := make([]string, 0, len(s.states)+1)
	if s.all {
		out = append(out, AllStatesSentinel)
	}
	return append(out, s.states...)
}

// MarshalJSON encodes the scope as ["all", "state", ...].
func (s StateScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes ["all"] or ["rajasthan", ...]. null decodes to an empty scope.
func (s *StateScope) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = StateScope{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("states must be an array of strings: %w", err)
	}
	*s = SpecificStates(ids...)
	return nil
}
