package platform

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
)

// Repository manages the singleton platform stats aggregate. Every write
// happens inside the same transaction as the settlement it accounts for.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreate(ctx context.Context) (*models.PlatformStats, error)
	RecordRevenue(ctx context.Context, amountCents int64, at time.Time) (*models.PlatformStats, error)
	ReverseRevenue(ctx context.Context, amountCents int64, at time.Time) (*models.PlatformStats, error)
	RecordDelivery(ctx context.Context, orders, unitsSold int64) (*models.PlatformStats, error)
}

type repository struct {
	db         *gorm.DB
	windowDays int
}

// NewRepository returns a platform stats repository. windowDays bounds the
// rolling daily-revenue series.
func NewRepository(db *gorm.DB, windowDays int) Repository {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &repository{db: db, windowDays: windowDays}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx, windowDays: r.windowDays}
}

func (r *repository) GetOrCreate(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := r.db.WithContext(ctx).
		Where("id = ?", models.PlatformStatsID).
		First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform stats")
	}

	stats = models.PlatformStats{ID: models.PlatformStatsID}
	if err := r.db.WithContext(ctx).Create(&stats).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create platform stats")
	}
	return &stats, nil
}

func (r *repository) RecordRevenue(ctx context.Context, amountCents int64, at time.Time) (*models.PlatformStats, error) {
	return r.adjustRevenue(ctx, amountCents, at)
}

func (r *repository) ReverseRevenue(ctx context.Context, amountCents int64, at time.Time) (*models.PlatformStats, error) {
	if amountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reversal amount must not be negative")
	}
	return r.adjustRevenue(ctx, -amountCents, at)
}

func (r *repository) adjustRevenue(ctx context.Context, amountCents int64, at time.Time) (*models.PlatformStats, error) {
	stats, err := r.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	stats.TotalRevenueCents += amountCents
	stats.DailyRevenue = stats.DailyRevenue.Add(at, amountCents, r.windowDays)
	if err := r.db.WithContext(ctx).Save(stats).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save platform stats")
	}
	return stats, nil
}

func (r *repository) RecordDelivery(ctx context.Context, orders, unitsSold int64) (*models.PlatformStats, error) {
	if orders < 0 || unitsSold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery counters must not be negative")
	}

	stats, err := r.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	stats.TotalDeliveredOrders += orders
	stats.TotalProductsSold += unitsSold
	if err := r.db.WithContext(ctx).Save(stats).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save platform stats")
	}
	return stats, nil
}
