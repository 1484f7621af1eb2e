package models

import (
	"time"

	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

// PlatformStatsID is the only row id; platform stats is a singleton
// aggregate with get-or-create semantics.
const PlatformStatsID = 1

// PlatformStats accumulates platform-wide revenue and order counters plus a
// rolling per-day revenue window.
type PlatformStats struct {
	ID                   int                      `gorm:"column:id;primaryKey"`
	TotalRevenueCents    int64                    `gorm:"column:total_revenue_cents;not null;default:0"`
	TotalDeliveredOrders int64                    `gorm:"column:total_delivered_orders;not null;default:0"`
	TotalProductsSold    int64                    `gorm:"column:total_products_sold;not null;default:0"`
	DailyRevenue         types.DailyRevenueWindow `gorm:"column:daily_revenue;type:jsonb;serializer:json"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
