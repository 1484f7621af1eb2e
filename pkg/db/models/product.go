package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// Product carries the stock counters the adjuster mutates. Variant-bearing
// products track stock per SKU; simple products use the product-level
// counter.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	Name        string              `gorm:"column:name;not null"`
	StockQty    int                 `gorm:"column:stock_qty;not null;default:0"`
	HasVariants bool                `gorm:"column:has_variants;not null;default:false"`
	Tags        pq.StringArray      `gorm:"column:tags;type:text[]"`
	Status      enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Variants    []ProductVariant    `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductVariant is one purchasable SKU of a variant-bearing product.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_variant_product_sku"`
	SKU       string    `gorm:"column:sku;not null;uniqueIndex:ux_variant_product_sku"`
	StockQty  int       `gorm:"column:stock_qty;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
