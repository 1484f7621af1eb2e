package settlement

import (
	"github.com/google/uuid"

	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

// SellerUpdate reports one seller credit applied during delivery settlement.
type SellerUpdate struct {
	SellerID      uuid.UUID `json:"seller_id"`
	AmountCents   int64     `json:"amount_cents"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

// CreditResult is the outcome of CreditSellersOnDelivery. A precondition
// miss (order not delivered) comes back as Success=false with a message,
// not as an error; a repeat call on an already-settled order comes back as
// Success=true with the prior transactions.
type CreditResult struct {
	Success        bool           `json:"success"`
	AlreadySettled bool           `json:"already_settled"`
	Updates        []SellerUpdate `json:"updates"`
	Message        string         `json:"message"`
}

// Reversal reports one seller debit applied during refund settlement.
// RemovedCents is the amount actually taken from the balance; when the
// balance could not cover the request the difference lands in
// ShortfallCents and on the seller's deficit tracker.
type Reversal struct {
	SellerID       uuid.UUID `json:"seller_id"`
	SubOrderID     uuid.UUID `json:"sub_order_id"`
	RequestedCents int64     `json:"requested_cents"`
	RemovedCents   int64     `json:"removed_cents"`
	ShortfallCents int64     `json:"shortfall_cents"`
	TransactionID  uuid.UUID `json:"transaction_id"`
}

// RevertResult is the outcome of the reversal operations.
type RevertResult struct {
	Success   bool       `json:"success"`
	Reversals []Reversal `json:"reversals"`
	Message   string     `json:"message"`
}

// RecognizePaymentInput is reported by the payment gateway (or the admin
// confirming payment manually): an amount and a unique gateway reference.
type RecognizePaymentInput struct {
	OrderID     uuid.UUID
	AmountCents int64
	Reference   string
	Actor       types.Actor
}

// RecognizePaymentResult reports payment recognition. Replayed marks a
// duplicate trigger resolved as a no-op.
type RecognizePaymentResult struct {
	Success  bool   `json:"success"`
	Replayed bool   `json:"replayed"`
	Message  string `json:"message"`
}

// RefundLineItem is the normalized refund line the reversal operation
// accepts: the sub-order it belongs to, the seller owning it, and the
// amount to claw back. Richer caller-side objects must be reduced to this
// shape by an adapter before calling in.
type RefundLineItem struct {
	SubOrderID  uuid.UUID
	SellerID    uuid.UUID
	AmountCents int64
	RefundID    *uuid.UUID
}
