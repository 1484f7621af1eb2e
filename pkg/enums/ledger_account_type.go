package enums

import "fmt"

// LedgerAccountType distinguishes which balance aggregate a ledger entry
// belongs to.
type LedgerAccountType string

const (
	LedgerAccountWallet        LedgerAccountType = "wallet"
	LedgerAccountSellerRevenue LedgerAccountType = "seller_revenue"
)

var validLedgerAccountTypes = []LedgerAccountType{
	LedgerAccountWallet,
	LedgerAccountSellerRevenue,
}

// IsValid reports whether the value is a known LedgerAccountType.
func (t LedgerAccountType) IsValid() bool {
	for _, candidate := range validLedgerAccountTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerAccountType converts raw input into a LedgerAccountType.
func ParseLedgerAccountType(value string) (LedgerAccountType, error) {
	for _, candidate := range validLedgerAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger account type %q", value)
}
