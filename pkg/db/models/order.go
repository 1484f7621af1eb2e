package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// Order is the aggregate root for a purchase. It is mutated only by the
// settlement engine and never hard-deleted.
type Order struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID          uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null"`
	OrderNumber      int64                 `gorm:"column:order_number;not null"`
	PaymentStatus    enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	CurrentStatus    enums.OrderStatus     `gorm:"column:current_status;type:text;not null;default:'pending'"`
	SettlementState  enums.SettlementState `gorm:"column:settlement_state;type:text;not null;default:'pending_payment'"`
	TotalCents       int64                 `gorm:"column:total_cents;not null"`
	InventoryReduced bool                  `gorm:"column:inventory_reduced;not null;default:false"`
	PaymentReference *string               `gorm:"column:payment_reference;uniqueIndex:ux_orders_payment_reference"`
	SubOrders        []SubOrder            `gorm:"foreignKey:OrderID"`
	Items            []OrderItem           `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
