package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IncomeLimit is an annual income ceiling. The zero value is Unlimited.
type IncomeLimit struct {
	capped bool
	amount float64
}

// Unlimited returns a limit that every income satisfies.
func Unlimited() IncomeLimit { return IncomeLimit{} }

// Capped returns a limit of amount (inclusive).
func Capped(amount float64) IncomeLimit {
	return IncomeLimit{capped: true, amount: amount}
}

// IsUnlimited reports whether there is no ceiling.
func (l IncomeLimit) IsUnlimited() bool { return !l.capped }

// Amount returns the ceiling and whether one is set.
func (l IncomeLimit) Amount() (float64, bool) { return l.amount, l.capped }

// Allows reports whether income is within the limit. NaN never passes a cap.
func (l IncomeLimit) Allows(income float64) bool {
	if !l.capped {
		return true
	}
	return income <= l.amount
}

// MarshalJSON encodes Unlimited as null and a cap as a number.
func (l IncomeLimit) MarshalJSON() ([]byte, error) {
	if !l.capped {
		return []byte("null"), nil
	}
	return json.Marshal(l.amount)
}

// UnmarshalJSON decodes null as Unlimited and a number as a cap.
func (l *IncomeLimit) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = Unlimited()
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return fmt.Errorf("incomeMax must be a number or null: %w", err)
	}
	*l = Capped(amount)
	return nil
}
