package enums

import "fmt"

// SettlementState is the financial dimension of an order's lifecycle. It is
// one-directional except for reversal, which may originate from either
// settled state.
type SettlementState string

const (
	SettlementStatePendingPayment      SettlementState = "pending_payment"
	SettlementStatePaymentRecognized   SettlementState = "payment_recognized"
	SettlementStateDeliveredAndSettled SettlementState = "delivered_and_settled"
	SettlementStatePartiallyReversed   SettlementState = "partially_reversed"
	SettlementStateFullyReversed       SettlementState = "fully_reversed"
)

var validSettlementStates = []SettlementState{
	SettlementStatePendingPayment,
	SettlementStatePaymentRecognized,
	SettlementStateDeliveredAndSettled,
	SettlementStatePartiallyReversed,
	SettlementStateFullyReversed,
}

var settlementTransitions = map[SettlementState][]SettlementState{
	SettlementStatePendingPayment: {
		SettlementStatePaymentRecognized,
		SettlementStateDeliveredAndSettled,
	},
	SettlementStatePaymentRecognized: {
		SettlementStateDeliveredAndSettled,
	},
	SettlementStateDeliveredAndSettled: {
		SettlementStatePartiallyReversed,
		SettlementStateFullyReversed,
	},
	SettlementStatePartiallyReversed: {
		SettlementStatePartiallyReversed,
		SettlementStateFullyReversed,
	},
}

// String implements fmt.Stringer.
func (s SettlementState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementState.
func (s SettlementState) IsValid() bool {
	for _, candidate := range validSettlementStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s
// to target.
func (s SettlementState) CanTransitionTo(target SettlementState) bool {
	for _, candidate := range settlementTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// Settled reports whether seller credits have been applied for the order.
func (s SettlementState) Settled() bool {
	switch s {
	case SettlementStateDeliveredAndSettled, SettlementStatePartiallyReversed, SettlementStateFullyReversed:
		return true
	default:
		return false
	}
}

// ParseSettlementState converts raw input into a SettlementState.
func ParseSettlementState(value string) (SettlementState, error) {
	for _, candidate := range validSettlementStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement state %q", value)
}
