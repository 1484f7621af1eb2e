package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// Repository exposes the order reads and narrow writes the settlement
// engine needs. Orders are never deleted; status fields are the only
// mutable surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindSubOrder(ctx context.Context, subOrderID uuid.UUID) (*models.SubOrder, error)
	UpdateSettlementState(ctx context.Context, orderID uuid.UUID, state enums.SettlementState) error
	MarkPaymentRecognized(ctx context.Context, orderID uuid.UUID, reference string) error
	MarkRefunded(ctx context.Context, orderID uuid.UUID) error
	UpdateSubOrderPayoutStatus(ctx context.Context, subOrderID uuid.UUID, status enums.PayoutStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindSubOrder(ctx context.Context, subOrderID uuid.UUID) (*models.SubOrder, error) {
	var subOrder models.SubOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", subOrderID).
		First(&subOrder).Error
	if err != nil {
		return nil, err
	}
	return &subOrder, nil
}

func (r *repository) UpdateSettlementState(ctx context.Context, orderID uuid.UUID, state enums.SettlementState) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("settlement_state", state).Error
}

func (r *repository) MarkPaymentRecognized(ctx context.Context, orderID uuid.UUID, reference string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"settlement_state":  enums.SettlementStatePaymentRecognized,
			"payment_reference": reference,
		}).Error
}

func (r *repository) MarkRefunded(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", enums.PaymentStatusRefunded).Error
}

func (r *repository) UpdateSubOrderPayoutStatus(ctx context.Context, subOrderID uuid.UUID, status enums.PayoutStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("id = ?", subOrderID).
		Update("payout_status", status).Error
}
