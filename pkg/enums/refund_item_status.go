package enums

import "fmt"

// RefundItemStatus is the per-line-item state of a refund request. Each item
// is reviewed independently by the seller that owns it.
type RefundItemStatus string

const (
	RefundItemStatusRequested    RefundItemStatus = "requested"
	RefundItemStatusSellerReview RefundItemStatus = "seller_review"
	RefundItemStatusApproved     RefundItemStatus = "approved"
	RefundItemStatusRejected     RefundItemStatus = "rejected"
)

var validRefundItemStatuses = []RefundItemStatus{
	RefundItemStatusRequested,
	RefundItemStatusSellerReview,
	RefundItemStatusApproved,
	RefundItemStatusRejected,
}

var refundItemTransitions = map[RefundItemStatus][]RefundItemStatus{
	RefundItemStatusRequested:    {RefundItemStatusSellerReview},
	RefundItemStatusSellerReview: {RefundItemStatusApproved, RefundItemStatusRejected},
}

// IsValid reports whether the value is a known RefundItemStatus.
func (s RefundItemStatus) IsValid() bool {
	for _, candidate := range validRefundItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s RefundItemStatus) Terminal() bool {
	return s == RefundItemStatusApproved || s == RefundItemStatusRejected
}

// CanTransitionTo reports whether the item may move from s to target.
func (s RefundItemStatus) CanTransitionTo(target RefundItemStatus) bool {
	for _, candidate := range refundItemTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseRefundItemStatus converts raw input into a RefundItemStatus.
func ParseRefundItemStatus(value string) (RefundItemStatus, error) {
	for _, candidate := range validRefundItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund item status %q", value)
}
