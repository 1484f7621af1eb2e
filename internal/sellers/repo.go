package sellers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
)

// Repository manages seller balance aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error)
	GetOrCreate(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error)
	Save(ctx context.Context, balance *models.SellerBalance) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a seller balance repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	var balance models.SellerBalance
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) GetOrCreate(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	balance, err := r.Find(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	created := &models.SellerBalance{SellerID: sellerID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) Save(ctx context.Context, balance *models.SellerBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}
