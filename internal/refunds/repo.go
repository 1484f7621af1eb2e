package refunds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.RefundRequest) error
	Find(ctx context.Context, requestID uuid.UUID) (*models.RefundRequest, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.RefundItem, error)
	Save(ctx context.Context, request *models.RefundRequest) error
	SaveItem(ctx context.Context, item *models.RefundItem) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) Find(ctx context.Context, requestID uuid.UUID) (*models.RefundRequest, error) {
	var request models.RefundRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", requestID).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.RefundItem, error) {
	var item models.RefundItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Save(ctx context.Context, request *models.RefundRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) SaveItem(ctx context.Context, item *models.RefundItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
