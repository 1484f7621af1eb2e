package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// RefundRequest aggregates a buyer's refund of one order. Items are
// reviewed per seller; the aggregate totals track the requested amount vs
// the amount that ultimately settled.
type RefundRequest struct {
	ID               uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID    `gorm:"column:order_id;type:uuid;not null;index"`
	BuyerID          uuid.UUID    `gorm:"column:buyer_id;type:uuid;not null;index"`
	Reason           *string      `gorm:"column:reason"`
	TotalRefundCents int64        `gorm:"column:total_refund_cents;not null;default:0"`
	FinalRefundCents int64        `gorm:"column:final_refund_cents;not null;default:0"`
	Items            []RefundItem `gorm:"foreignKey:RefundRequestID"`
	CreatedAt        time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *RefundRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RefundItem is one seller-owned line of a refund request with an
// independent review status.
type RefundItem struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	RefundRequestID uuid.UUID              `gorm:"column:refund_request_id;type:uuid;not null;index"`
	SubOrderID      uuid.UUID              `gorm:"column:sub_order_id;type:uuid;not null"`
	SellerID        uuid.UUID              `gorm:"column:seller_id;type:uuid;not null"`
	AmountCents     int64                  `gorm:"column:amount_cents;not null"`
	Status          enums.RefundItemStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	ReviewedByType  *enums.ActorType       `gorm:"column:reviewed_by_type;type:text"`
	ReviewedByID    *uuid.UUID             `gorm:"column:reviewed_by_id;type:uuid"`
	ReviewNote      *string                `gorm:"column:review_note"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *RefundItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
