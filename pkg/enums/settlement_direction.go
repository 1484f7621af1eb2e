package enums

import "fmt"

// SettlementDirection distinguishes seller credits from reversal debits.
type SettlementDirection string

const (
	SettlementDirectionCredit SettlementDirection = "credit"
	SettlementDirectionDebit  SettlementDirection = "debit"
)

var validSettlementDirections = []SettlementDirection{
	SettlementDirectionCredit,
	SettlementDirectionDebit,
}

// IsValid reports whether the value is a known SettlementDirection.
func (d SettlementDirection) IsValid() bool {
	for _, candidate := range validSettlementDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseSettlementDirection converts raw input into a SettlementDirection.
func ParseSettlementDirection(value string) (SettlementDirection, error) {
	for _, candidate := range validSettlementDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement direction %q", value)
}
