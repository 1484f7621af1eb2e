package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
)

var validate = validator.New()

// Item is the normalized stock mutation input. Callers holding richer
// variant objects must reduce them to this shape before calling in.
type Item struct {
	ProductID uuid.UUID `validate:"required"`
	SKU       string
	Qty       int `validate:"gt=0"`
}

// ReduceResult reports one applied decrement.
type ReduceResult struct {
	ProductID     uuid.UUID
	SKU           string
	Qty           int
	ProductStatus enums.ProductStatus
}

// OrderStockResult aggregates an order-level stock reduction.
type OrderStockResult struct {
	Success        bool
	AlreadyReduced bool
	ItemsProcessed int
	Results        []ReduceResult
}

// Service mutates and validates product stock. Mutating methods expect to
// run inside the caller's transaction via WithTx.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ReduceStockForItem(ctx context.Context, item Item) (*ReduceResult, error)
	ReduceOrderStock(ctx context.Context, order *models.Order) (*OrderStockResult, error)
	ValidateStockAvailability(ctx context.Context, items []Item) (*ValidationResult, error)
}

type service struct {
	db *gorm.DB
}

// NewService wires a stock service bound to the provided database.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("inventory db handle required")
	}
	return &service{db: db}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{db: tx}
}

// ReduceStockForItem decrements stock for one product or variant SKU with a
// single conditional update: the filter `stock_qty >= qty` makes the write
// a compare-and-swap, so concurrent orders can never drive stock negative.
func (s *service) ReduceStockForItem(ctx context.Context, item Item) (*ReduceResult, error) {
	if err := validate.Struct(item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock item")
	}

	product, err := loadProduct(ctx, s.db, item.ProductID)
	if err != nil {
		return nil, err
	}

	if product.HasVariants {
		if item.SKU == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("sku required for variant product %s", item.ProductID))
		}
		if err := reduceVariantStock(ctx, s.db, item); err != nil {
			return nil, err
		}
	} else {
		if err := reduceProductStock(ctx, s.db, item); err != nil {
			return nil, err
		}
	}

	status, err := recomputeProductStatus(ctx, s.db, product)
	if err != nil {
		return nil, err
	}

	return &ReduceResult{
		ProductID:     item.ProductID,
		SKU:           item.SKU,
		Qty:           item.Qty,
		ProductStatus: status,
	}, nil
}

// ReduceOrderStock decrements stock for every line item of the order,
// guarded by the order's inventory_reduced flag. It is meant to run inside
// the same transaction as the settlement that triggered it so a mid-batch
// failure rolls back the whole order transition.
func (s *service) ReduceOrderStock(ctx context.Context, order *models.Order) (*OrderStockResult, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.InventoryReduced {
		return &OrderStockResult{Success: true, AlreadyReduced: true}, nil
	}

	results := make([]ReduceResult, 0, len(order.Items))
	for _, lineItem := range order.Items {
		item := Item{ProductID: lineItem.ProductID, Qty: lineItem.Qty}
		if lineItem.VariantSKU != nil {
			item.SKU = *lineItem.VariantSKU
		}
		result, err := s.ReduceStockForItem(ctx, item)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("inventory_reduced", true).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark inventory reduced")
	}
	order.InventoryReduced = true

	return &OrderStockResult{
		Success:        true,
		ItemsProcessed: len(results),
		Results:        results,
	}, nil
}

func loadProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("product %s not found", productID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func reduceVariantStock(ctx context.Context, tx *gorm.DB, item Item) error {
	res := tx.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET stock_qty = stock_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND sku = ? AND stock_qty >= ?
	`, item.Qty, item.ProductID, item.SKU, item.Qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement variant stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero matched rows: re-read to tell an unknown SKU apart from a
	// shortfall, so the caller gets an actionable error.
	var variant models.ProductVariant
	err := tx.WithContext(ctx).
		Where("product_id = ? AND sku = ?", item.ProductID, item.SKU).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("sku %q not found for product %s", item.SKU, item.ProductID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-read variant stock")
	}
	return insufficientStock(item, variant.StockQty)
}

func reduceProductStock(ctx context.Context, tx *gorm.DB, item Item) error {
	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_qty = stock_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND has_variants = ? AND stock_qty >= ?
	`, item.Qty, item.ProductID, false, item.Qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement product stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var product models.Product
	err := tx.WithContext(ctx).
		Where("id = ?", item.ProductID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("product %s not found", item.ProductID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-read product stock")
	}
	return insufficientStock(item, product.StockQty)
}

func recomputeProductStatus(ctx context.Context, tx *gorm.DB, product *models.Product) (enums.ProductStatus, error) {
	remaining := 0
	if product.HasVariants {
		var total *int
		err := tx.WithContext(ctx).
			Model(&models.ProductVariant{}).
			Select("SUM(stock_qty)").
			Where("product_id = ?", product.ID).
			Scan(&total).Error
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum variant stock")
		}
		if total != nil {
			remaining = *total
		}
	} else {
		var current models.Product
		if err := tx.WithContext(ctx).
			Where("id = ?", product.ID).
			First(&current).Error; err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		remaining = current.StockQty
	}

	status := enums.ProductStatusActive
	if remaining <= 0 {
		status = enums.ProductStatusOutOfStock
	}
	if err := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("status", status).Error; err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}
	return status, nil
}

func insufficientStock(item Item, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id":    item.ProductID,
			"sku":           item.SKU,
			"requested_qty": item.Qty,
			"available_qty": available,
		})
}
