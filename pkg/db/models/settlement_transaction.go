package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// SettlementTransaction is the seller-facing credit/debit record for one
// sub-order. The unique (sub_order, seller, direction) index is the
// defense-in-depth guard against double-crediting beyond the order-level
// settlement state.
type SettlementTransaction struct {
	ID                   uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	SubOrderID           uuid.UUID                 `gorm:"column:sub_order_id;type:uuid;not null;uniqueIndex:ux_settlement_suborder_dir"`
	SellerID             uuid.UUID                 `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:ux_settlement_suborder_dir"`
	Direction            enums.SettlementDirection `gorm:"column:direction;type:text;not null;uniqueIndex:ux_settlement_suborder_dir"`
	AmountCents          int64                     `gorm:"column:amount_cents;not null"`
	RelatedTransactionID *uuid.UUID                `gorm:"column:related_transaction_id;type:uuid"`
	Reason               *string                   `gorm:"column:reason"`
	CreatedAt            time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (t *SettlementTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
