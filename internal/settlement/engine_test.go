package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/internal/inventory"
	"github.com/fekt2016/eaz-back-sub005/internal/ledger"
	"github.com/fekt2016/eaz-back-sub005/internal/notify"
	"github.com/fekt2016/eaz-back-sub005/internal/orders"
	"github.com/fekt2016/eaz-back-sub005/internal/platform"
	"github.com/fekt2016/eaz-back-sub005/internal/sellers"
	"github.com/fekt2016/eaz-back-sub005/internal/taxes"
	"github.com/fekt2016/eaz-back-sub005/pkg/config"
	"github.com/fekt2016/eaz-back-sub005/pkg/db"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
	"github.com/fekt2016/eaz-back-sub005/pkg/metrics"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

type harness struct {
	conn        *gorm.DB
	engine      Engine
	sellersRepo sellers.Repository
	statsRepo   platform.Repository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := "file:settlement_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Order{},
		&models.SubOrder{},
		&models.OrderItem{},
		&models.SellerBalance{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.SettlementTransaction{},
		&models.PlatformStats{},
		&models.Product{},
		&models.ProductVariant{},
	))

	calc, err := taxes.NewCalculator(config.RatesConfig{
		VATBps:           1250,
		NHILBps:          250,
		GETFundBps:       250,
		COVIDLevyBps:     100,
		CommissionBps:    1000,
		RevenueWindowDay: 30,
	})
	require.NoError(t, err)

	sellersSvc, err := sellers.NewService(sellers.NewRepository(conn))
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "settlement-test"})
	statsRepo := platform.NewRepository(conn, 30)
	stockSvc, err := inventory.NewService(conn)
	require.NoError(t, err)

	engine, err := NewEngine(
		db.FromGorm(conn),
		orders.NewRepository(conn),
		sellersSvc,
		ledgerSvc,
		NewRepository(conn),
		statsRepo,
		stockSvc,
		calc,
		notify.New(nil, logg),
		metrics.NewSettlementMetrics(nil),
		logg,
	)
	require.NoError(t, err)

	return &harness{
		conn:        conn,
		engine:      engine,
		sellersRepo: sellers.NewRepository(conn),
		statsRepo:   statsRepo,
	}
}

type seededOrder struct {
	order    *models.Order
	sellerA  uuid.UUID
	sellerB  uuid.UUID
	subA     uuid.UUID
	subB     uuid.UUID
	product  *models.Product
	totalQty int
}

// seedDeliveredOrder builds a two-seller delivered order: seller A owns a
// 10000+1000 sub-order, seller B a 5000+0 one, both at the default 10%
// commission. Earnings: 9900 and 4500; platform fee: 1100 + 500.
func (h *harness) seedDeliveredOrder(t *testing.T) *seededOrder {
	t.Helper()
	ctx := context.Background()

	sellerA := uuid.New()
	sellerB := uuid.New()
	for _, sellerID := range []uuid.UUID{sellerA, sellerB} {
		_, err := h.sellersRepo.GetOrCreate(ctx, sellerID)
		require.NoError(t, err)
	}

	product := &models.Product{SellerID: sellerA, Name: "widget", StockQty: 10, Status: enums.ProductStatusActive}
	require.NoError(t, h.conn.Create(product).Error)

	order := &models.Order{
		BuyerID:       uuid.New(),
		OrderNumber:   42,
		PaymentStatus: enums.PaymentStatusPending,
		CurrentStatus: enums.OrderStatusDelivered,
		TotalCents:    16000,
	}
	require.NoError(t, h.conn.Create(order).Error)

	subA := &models.SubOrder{OrderID: order.ID, SellerID: sellerA, BasePriceCents: 10000, ShippingCents: 1000}
	subB := &models.SubOrder{OrderID: order.ID, SellerID: sellerB, BasePriceCents: 5000}
	require.NoError(t, h.conn.Create(subA).Error)
	require.NoError(t, h.conn.Create(subB).Error)

	item := &models.OrderItem{
		OrderID:        order.ID,
		SubOrderID:     subA.ID,
		ProductID:      product.ID,
		Qty:            3,
		UnitPriceCents: 1000,
	}
	require.NoError(t, h.conn.Create(item).Error)

	return &seededOrder{
		order:    order,
		sellerA:  sellerA,
		sellerB:  sellerB,
		subA:     subA.ID,
		subB:     subB.ID,
		product:  product,
		totalQty: 3,
	}
}

func (h *harness) sellerBalance(t *testing.T, sellerID uuid.UUID) *models.SellerBalance {
	t.Helper()
	balance, err := h.sellersRepo.Find(context.Background(), sellerID)
	require.NoError(t, err)
	require.NotNil(t, balance)
	return balance
}

func TestCreditSellersOnDelivery(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	result, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.AlreadySettled)
	require.Len(t, result.Updates, 2)

	require.Equal(t, int64(9900), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(4500), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	var order models.Order
	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.SettlementStateDeliveredAndSettled, order.SettlementState)
	require.True(t, order.InventoryReduced)

	var subOrders []models.SubOrder
	require.NoError(t, h.conn.Find(&subOrders, "order_id = ?", order.ID).Error)
	for _, subOrder := range subOrders {
		require.Equal(t, enums.PayoutStatusPaid, subOrder.PayoutStatus)
	}

	var product models.Product
	require.NoError(t, h.conn.First(&product, "id = ?", seeded.product.ID).Error)
	require.Equal(t, 7, product.StockQty)

	stats, err := h.statsRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalDeliveredOrders)
	require.Equal(t, int64(3), stats.TotalProductsSold)
	// Revenue fallback: payment was never recognized, so the fee lands here.
	require.Equal(t, int64(1600), stats.TotalRevenueCents)

	// Conservation: payouts + platform revenue reassemble the order value.
	var payouts int64
	for _, update := range result.Updates {
		payouts += update.AmountCents
	}
	require.Equal(t, int64(16000), payouts+stats.TotalRevenueCents)
}

func TestCreditSellersOnDeliveryIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)
	actorID := uuid.New()

	first, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, actorID)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, actorID)
	require.NoError(t, err)
	require.True(t, second.Success)
	require.True(t, second.AlreadySettled)
	require.Len(t, second.Updates, 2)

	// Balances did not move twice.
	require.Equal(t, int64(9900), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(4500), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	// Exactly one credit transaction per sub-order.
	var count int64
	require.NoError(t, h.conn.Model(&models.SettlementTransaction{}).
		Where("order_id = ? AND direction = ?", seeded.order.ID, enums.SettlementDirectionCredit).
		Count(&count).Error)
	require.Equal(t, int64(2), count)

	// Stock reduced once.
	var product models.Product
	require.NoError(t, h.conn.First(&product, "id = ?", seeded.product.ID).Error)
	require.Equal(t, 7, product.StockQty)
}

func TestCreditSellersOnDeliveryRequiresDelivered(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	require.NoError(t, h.conn.Model(&models.Order{}).
		Where("id = ?", seeded.order.ID).
		Update("current_status", enums.OrderStatusShipped).Error)

	result, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)
	require.False(t, result.Success)

	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerA).BalanceCents)
}

func TestRecognizePayment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	input := RecognizePaymentInput{
		OrderID:     seeded.order.ID,
		AmountCents: 16000,
		Reference:   "gw:abc123",
		Actor:       types.System(),
	}

	result, err := h.engine.RecognizePayment(ctx, input)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.Replayed)

	var order models.Order
	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.Equal(t, enums.SettlementStatePaymentRecognized, order.SettlementState)
	require.NotNil(t, order.PaymentReference)
	require.Equal(t, "gw:abc123", *order.PaymentReference)

	stats, err := h.statsRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1600), stats.TotalRevenueCents)

	// Duplicate webhook delivery replays without double-recognizing.
	replay, err := h.engine.RecognizePayment(ctx, input)
	require.NoError(t, err)
	require.True(t, replay.Replayed)

	stats, err = h.statsRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1600), stats.TotalRevenueCents)
}

func TestRecognizePaymentThenDeliveryRecognizesRevenueOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	_, err := h.engine.RecognizePayment(ctx, RecognizePaymentInput{
		OrderID:     seeded.order.ID,
		AmountCents: 16000,
		Reference:   "gw:once",
		Actor:       types.System(),
	})
	require.NoError(t, err)

	_, err = h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)

	stats, err := h.statsRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1600), stats.TotalRevenueCents)
}

func TestRecognizePaymentRejectsReferenceHeldByAnotherOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	_, err := h.engine.RecognizePayment(ctx, RecognizePaymentInput{
		OrderID:     seeded.order.ID,
		AmountCents: 16000,
		Reference:   "gw:shared",
		Actor:       types.System(),
	})
	require.NoError(t, err)

	other := &models.Order{
		BuyerID:       uuid.New(),
		OrderNumber:   43,
		PaymentStatus: enums.PaymentStatusPending,
		CurrentStatus: enums.OrderStatusPending,
		TotalCents:    5000,
	}
	require.NoError(t, h.conn.Create(other).Error)

	// The collision is a conflict, never a replayed success: this order's
	// payment is still outstanding.
	_, err = h.engine.RecognizePayment(ctx, RecognizePaymentInput{
		OrderID:     other.ID,
		AmountCents: 5000,
		Reference:   "gw:shared",
		Actor:       types.System(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	var reloaded models.Order
	require.NoError(t, h.conn.First(&reloaded, "id = ?", other.ID).Error)
	require.Equal(t, enums.PaymentStatusPending, reloaded.PaymentStatus)
	require.Equal(t, enums.SettlementStatePendingPayment, reloaded.SettlementState)
	require.Nil(t, reloaded.PaymentReference)
}

func TestCreditSellersSkipsSubOrderWithExistingPayoutEntry(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	// A payout ledger entry for sub-order A already exists, as after a
	// partially replicated earlier run. Settlement must not move seller A's
	// balance again.
	reference := "payout:" + seeded.subA.String()
	orderID := seeded.order.ID
	require.NoError(t, h.conn.Create(&models.LedgerEntry{
		AccountType:        enums.LedgerAccountSellerRevenue,
		AccountID:          seeded.sellerA,
		Type:               enums.LedgerEntryTypeOrderEarnings,
		AmountCents:        9900,
		BalanceBeforeCents: 0,
		BalanceAfterCents:  9900,
		Reference:          &reference,
		OrderID:            &orderID,
		ActorType:          enums.ActorTypeSystem,
	}).Error)

	result, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Updates, 1)
	require.Equal(t, seeded.sellerB, result.Updates[0].SellerID)

	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(4500), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	// Only seller B's credit transaction exists, and the pre-existing
	// ledger entry was not duplicated.
	var count int64
	require.NoError(t, h.conn.Model(&models.SettlementTransaction{}).
		Where("order_id = ? AND direction = ?", seeded.order.ID, enums.SettlementDirectionCredit).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	require.NoError(t, h.conn.Model(&models.LedgerEntry{}).
		Where("reference = ?", reference).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRevertSkipsSubOrderWithExistingReversalEntry(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)
	actor := types.Admin(uuid.New())

	_, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)

	reference := "reversal:" + seeded.subB.String()
	orderID := seeded.order.ID
	require.NoError(t, h.conn.Create(&models.LedgerEntry{
		AccountType:        enums.LedgerAccountSellerRevenue,
		AccountID:          seeded.sellerB,
		Type:               enums.LedgerEntryTypeEarningsReversal,
		AmountCents:        -4500,
		BalanceBeforeCents: 4500,
		BalanceAfterCents:  0,
		Reference:          &reference,
		OrderID:            &orderID,
		ActorType:          enums.ActorTypeSystem,
	}).Error)

	result, err := h.engine.RevertSellersOnRefund(ctx, seeded.order.ID, "order returned", actor)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Reversals, 1)
	require.Equal(t, seeded.sellerA, result.Reversals[0].SellerID)

	// Seller B's balance did not move without a fresh ledger entry.
	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(4500), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	var count int64
	require.NoError(t, h.conn.Model(&models.SettlementTransaction{}).
		Where("order_id = ? AND direction = ?", seeded.order.ID, enums.SettlementDirectionDebit).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRecognizePaymentLogsAmountMismatch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	// A gateway amount that disagrees with the order total is recorded but
	// does not block recognition.
	result, err := h.engine.RecognizePayment(ctx, RecognizePaymentInput{
		OrderID:     seeded.order.ID,
		AmountCents: 15000,
		Reference:   "gw:short",
		Actor:       types.System(),
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.Replayed)

	var order models.Order
	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
}

func TestRevertSellersOnRefund(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)
	actor := types.Admin(uuid.New())

	_, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)

	result, err := h.engine.RevertSellersOnRefund(ctx, seeded.order.ID, "order returned", actor)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Reversals, 2)

	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	var order models.Order
	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.SettlementStateFullyReversed, order.SettlementState)
	require.Equal(t, enums.PaymentStatusRefunded, order.PaymentStatus)

	var subOrders []models.SubOrder
	require.NoError(t, h.conn.Find(&subOrders, "order_id = ?", order.ID).Error)
	for _, subOrder := range subOrders {
		require.Equal(t, enums.PayoutStatusHold, subOrder.PayoutStatus)
	}

	// Each debit links back to the credit it reverses.
	var debits []models.SettlementTransaction
	require.NoError(t, h.conn.Find(&debits, "order_id = ? AND direction = ?",
		order.ID, enums.SettlementDirectionDebit).Error)
	require.Len(t, debits, 2)
	for _, debit := range debits {
		require.NotNil(t, debit.RelatedTransactionID)
	}

	// The platform gives back its fee share.
	stats, err := h.statsRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.TotalRevenueCents)

	// Replay: a second full reversal finds nothing left to debit.
	again, err := h.engine.RevertSellersOnRefund(ctx, seeded.order.ID, "order returned", actor)
	require.NoError(t, err)
	require.True(t, again.Success)
	require.Empty(t, again.Reversals)
	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerA).BalanceCents)
}

func TestRevertSellersOnRefundClampsAtBalance(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)
	actor := types.Admin(uuid.New())

	_, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)

	// Seller A withdrew most of the payout before the refund landed.
	require.NoError(t, h.conn.Model(&models.SellerBalance{}).
		Where("seller_id = ?", seeded.sellerA).
		Updates(map[string]any{"balance_cents": 4000, "withdrawable_cents": 4000}).Error)

	result, err := h.engine.RevertSellersOnRefund(ctx, seeded.order.ID, "chargeback", actor)
	require.NoError(t, err)
	require.True(t, result.Success)

	var reversalA *Reversal
	for i := range result.Reversals {
		if result.Reversals[i].SellerID == seeded.sellerA {
			reversalA = &result.Reversals[i]
		}
	}
	require.NotNil(t, reversalA)
	require.Equal(t, int64(9900), reversalA.RequestedCents)
	require.Equal(t, int64(4000), reversalA.RemovedCents)
	require.Equal(t, int64(5900), reversalA.ShortfallCents)

	balance := h.sellerBalance(t, seeded.sellerA)
	require.Equal(t, int64(0), balance.BalanceCents)
	require.Equal(t, int64(5900), balance.NegativeCents)

	// The ledger records what actually moved, not what was owed.
	var entry models.LedgerEntry
	require.NoError(t, h.conn.First(&entry,
		"account_id = ? AND type = ?", seeded.sellerA, enums.LedgerEntryTypeEarningsReversal).Error)
	require.Equal(t, int64(-4000), entry.AmountCents)
	require.Equal(t, int64(4000), entry.BalanceBeforeCents)
	require.Equal(t, int64(0), entry.BalanceAfterCents)
}

func TestRevertSellersForItems(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)
	actor := types.Admin(uuid.New())

	_, err := h.engine.CreditSellersOnDelivery(ctx, seeded.order.ID, uuid.New())
	require.NoError(t, err)

	// Refund only seller B's sub-order.
	result, err := h.engine.RevertSellersForItems(ctx, seeded.order.ID, []RefundLineItem{
		{SubOrderID: seeded.subB, SellerID: seeded.sellerB, AmountCents: 4500},
	}, "item damaged", actor)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Reversals, 1)
	require.Equal(t, int64(4500), result.Reversals[0].RemovedCents)

	require.Equal(t, int64(9900), h.sellerBalance(t, seeded.sellerA).BalanceCents)
	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	var order models.Order
	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.SettlementStatePartiallyReversed, order.SettlementState)

	var subB models.SubOrder
	require.NoError(t, h.conn.First(&subB, "id = ?", seeded.subB).Error)
	require.Equal(t, enums.PayoutStatusHold, subB.PayoutStatus)
	var subA models.SubOrder
	require.NoError(t, h.conn.First(&subA, "id = ?", seeded.subA).Error)
	require.Equal(t, enums.PayoutStatusPaid, subA.PayoutStatus)

	// Replaying the same line item is a no-op.
	again, err := h.engine.RevertSellersForItems(ctx, seeded.order.ID, []RefundLineItem{
		{SubOrderID: seeded.subB, SellerID: seeded.sellerB, AmountCents: 4500},
	}, "item damaged", actor)
	require.NoError(t, err)
	require.Empty(t, again.Reversals)
	require.Equal(t, int64(0), h.sellerBalance(t, seeded.sellerB).BalanceCents)

	// Reversing the remaining sub-order completes the claw-back.
	final, err := h.engine.RevertSellersForItems(ctx, seeded.order.ID, []RefundLineItem{
		{SubOrderID: seeded.subA, SellerID: seeded.sellerA, AmountCents: 9900},
	}, "order returned", actor)
	require.NoError(t, err)
	require.Len(t, final.Reversals, 1)

	require.NoError(t, h.conn.First(&order, "id = ?", seeded.order.ID).Error)
	require.Equal(t, enums.SettlementStateFullyReversed, order.SettlementState)
}

func TestRevertRequiresSettledOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedDeliveredOrder(t)

	result, err := h.engine.RevertSellersOnRefund(ctx, seeded.order.ID, "too early", types.Admin(uuid.New()))
	require.NoError(t, err)
	require.False(t, result.Success)
}
