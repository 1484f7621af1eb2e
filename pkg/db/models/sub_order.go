package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// SubOrder is one seller's slice of an order. CommissionBps is snapshotted
// at order creation so later platform rate changes never alter the
// settlement math of already-placed orders; nil means the live platform
// default applies.
type SubOrder struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	SellerID       uuid.UUID          `gorm:"column:seller_id;type:uuid;not null;index"`
	BasePriceCents int64              `gorm:"column:base_price_cents;not null"`
	ShippingCents  int64              `gorm:"column:shipping_cents;not null;default:0"`
	CommissionBps  *int               `gorm:"column:commission_bps"`
	PayoutStatus   enums.PayoutStatus `gorm:"column:payout_status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SubOrder) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
