package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// Repository manages settlement transactions: the per-sub-order credit and
// debit records backing idempotency and reversal matching.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.SettlementTransaction) error
	FindBySubOrder(ctx context.Context, subOrderID, sellerID uuid.UUID, direction enums.SettlementDirection) (*models.SettlementTransaction, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, direction enums.SettlementDirection) ([]models.SettlementTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement transaction repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.SettlementTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) FindBySubOrder(ctx context.Context, subOrderID, sellerID uuid.UUID, direction enums.SettlementDirection) (*models.SettlementTransaction, error) {
	var transaction models.SettlementTransaction
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ? AND seller_id = ? AND direction = ?", subOrderID, sellerID, direction).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID, direction enums.SettlementDirection) ([]models.SettlementTransaction, error) {
	var transactions []models.SettlementTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND direction = ?", orderID, direction).
		Order("created_at ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
