package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerBalance is the mutable balance aggregate for one seller.
// WithdrawableCents is denormalized and must be recomputed after every
// mutation of BalanceCents or LockedCents.
type SellerBalance struct {
	SellerID          uuid.UUID `gorm:"column:seller_id;type:uuid;primaryKey"`
	BalanceCents      int64     `gorm:"column:balance_cents;not null;default:0"`
	LockedCents       int64     `gorm:"column:locked_cents;not null;default:0"`
	PendingCents      int64     `gorm:"column:pending_cents;not null;default:0"`
	NegativeCents     int64     `gorm:"column:negative_cents;not null;default:0"`
	WithdrawableCents int64     `gorm:"column:withdrawable_cents;not null;default:0"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeWithdrawable enforces withdrawable = max(0, balance - locked).
func (b *SellerBalance) RecomputeWithdrawable() {
	withdrawable := b.BalanceCents - b.LockedCents
	if withdrawable < 0 {
		withdrawable = 0
	}
	b.WithdrawableCents = withdrawable
}
