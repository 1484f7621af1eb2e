package enums

import "fmt"

// LedgerEntryType classifies a balance-changing event.
type LedgerEntryType string

const (
	LedgerEntryTypeTopup            LedgerEntryType = "topup"
	LedgerEntryTypePayment          LedgerEntryType = "payment"
	LedgerEntryTypeRefund           LedgerEntryType = "refund"
	LedgerEntryTypeWithdrawal       LedgerEntryType = "withdrawal"
	LedgerEntryTypeOrderEarnings    LedgerEntryType = "order_earnings"
	LedgerEntryTypeEarningsReversal LedgerEntryType = "earnings_reversal"
	LedgerEntryTypeAdjustment       LedgerEntryType = "adjustment"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeTopup,
	LedgerEntryTypePayment,
	LedgerEntryTypeRefund,
	LedgerEntryTypeWithdrawal,
	LedgerEntryTypeOrderEarnings,
	LedgerEntryTypeEarningsReversal,
	LedgerEntryTypeAdjustment,
}

// IsValid reports whether the value is a known LedgerEntryType.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
