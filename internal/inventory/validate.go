package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
)

// ItemErrorKind separates contract problems from stock problems so callers
// can route them to different failure surfaces.
type ItemErrorKind string

const (
	ItemErrorValidation ItemErrorKind = "validation"
	ItemErrorNotFound   ItemErrorKind = "not_found"
	ItemErrorStock      ItemErrorKind = "stock"
)

// ItemError describes one failing line of an availability check.
type ItemError struct {
	ProductID    uuid.UUID     `json:"product_id"`
	SKU          string        `json:"sku,omitempty"`
	Kind         ItemErrorKind `json:"kind"`
	Message      string        `json:"message"`
	RequestedQty int           `json:"requested_qty,omitempty"`
	AvailableQty int           `json:"available_qty,omitempty"`
}

// ValidationResult accumulates every failing item rather than stopping at
// the first, so checkout can surface the full picture at once.
type ValidationResult struct {
	Valid  bool
	Errors []ItemError
}

// ValidateStockAvailability is the read-only checkout precheck. A missing
// SKU on a variant-bearing product is a validation error, not a stock
// error; short stock reports the exact shortfall.
func (s *service) ValidateStockAvailability(ctx context.Context, items []Item) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}
	for _, item := range items {
		if itemErr := checkItem(ctx, s.db, item); itemErr != nil {
			result.Errors = append(result.Errors, *itemErr)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

func checkItem(ctx context.Context, db *gorm.DB, item Item) *ItemError {
	if item.ProductID == uuid.Nil {
		return &ItemError{
			Kind:    ItemErrorValidation,
			Message: "product id required",
		}
	}
	if item.Qty <= 0 {
		return &ItemError{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Kind:      ItemErrorValidation,
			Message:   "quantity must be positive",
		}
	}

	var product models.Product
	err := db.WithContext(ctx).
		Where("id = ?", item.ProductID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ItemError{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Kind:      ItemErrorNotFound,
				Message:   "product not found",
			}
		}
		return &ItemError{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Kind:      ItemErrorNotFound,
			Message:   fmt.Sprintf("product lookup failed: %v", err),
		}
	}

	available := product.StockQty
	if product.HasVariants {
		if item.SKU == "" {
			return &ItemError{
				ProductID: item.ProductID,
				Kind:      ItemErrorValidation,
				Message:   "sku required for variant product",
			}
		}
		var variant models.ProductVariant
		err := db.WithContext(ctx).
			Where("product_id = ? AND sku = ?", item.ProductID, item.SKU).
			First(&variant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ItemError{
					ProductID: item.ProductID,
					SKU:       item.SKU,
					Kind:      ItemErrorNotFound,
					Message:   "sku not found",
				}
			}
			return &ItemError{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Kind:      ItemErrorNotFound,
				Message:   fmt.Sprintf("variant lookup failed: %v", err),
			}
		}
		available = variant.StockQty
	}

	if available < item.Qty {
		return &ItemError{
			ProductID:    item.ProductID,
			SKU:          item.SKU,
			Kind:         ItemErrorStock,
			Message:      "insufficient stock",
			RequestedQty: item.Qty,
			AvailableQty: available,
		}
	}
	return nil
}
