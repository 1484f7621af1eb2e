package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
)

func TestValidateStockAvailability(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	plain := seedProduct(t, conn, 2)
	variants := seedVariantProduct(t, conn, "SKU-OK", 1)

	items := []Item{
		{ProductID: plain.ID, Qty: 2},                   // ok
		{ProductID: plain.ID, Qty: 5},                   // shortfall
		{ProductID: uuid.New(), Qty: 1},                 // unknown product
		{ProductID: variants.ID, Qty: 1},                // missing sku
		{ProductID: variants.ID, SKU: "SKU-NO", Qty: 1}, // unknown sku
		{ProductID: variants.ID, SKU: "SKU-OK", Qty: 1}, // ok
		{ProductID: plain.ID, Qty: 0},                   // invalid qty
	}

	result, err := svc.ValidateStockAvailability(ctx, items)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected failures")
	}
	if len(result.Errors) != 5 {
		t.Fatalf("expected all 5 failures reported, got %d: %+v", len(result.Errors), result.Errors)
	}

	kinds := map[ItemErrorKind]int{}
	for _, itemErr := range result.Errors {
		kinds[itemErr.Kind]++
	}
	if kinds[ItemErrorStock] != 1 || kinds[ItemErrorNotFound] != 2 || kinds[ItemErrorValidation] != 2 {
		t.Fatalf("unexpected error mix: %+v", kinds)
	}

	for _, itemErr := range result.Errors {
		if itemErr.Kind == ItemErrorStock {
			if itemErr.RequestedQty != 5 || itemErr.AvailableQty != 2 {
				t.Fatalf("shortfall should report exact quantities: %+v", itemErr)
			}
		}
	}
}

func TestValidateStockAvailabilityReadOnly(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	product := seedProduct(t, conn, 3)

	if _, err := svc.ValidateStockAvailability(ctx, []Item{{ProductID: product.ID, Qty: 2}}); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQty != 3 {
		t.Fatalf("precheck must not mutate stock, got %d", reloaded.StockQty)
	}
}

func TestValidateStockAvailabilityAllValid(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 10)

	result, err := svc.ValidateStockAvailability(context.Background(), []Item{
		{ProductID: product.ID, Qty: 1},
		{ProductID: product.ID, Qty: 9},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid || len(result.Errors) != 0 {
		t.Fatalf("expected clean result: %+v", result)
	}
}
