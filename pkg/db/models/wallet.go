package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a buyer's spendable balance. It is mutated only through
// ledger-writing wallet operations and is never allowed to go negative.
type Wallet struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
