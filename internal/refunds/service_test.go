package refunds

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
	"github.com/fekt2016/eaz-back-sub005/internal/settlement"
	"github.com/fekt2016/eaz-back-sub005/internal/taxes"
	"github.com/fekt2016/eaz-back-sub005/internal/wallet"
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
	conn      *gorm.DB
	svc       Service
	engine    settlement.Engine
	walletSvc wallet.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := "file:refunds_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.RefundRequest{},
		&models.RefundItem{},
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

	logg := logger.New(logger.Options{ServiceName: "refunds-test"})
	txRunner := db.FromGorm(conn)

	sellersSvc, err := sellers.NewService(sellers.NewRepository(conn))
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	walletSvc, err := wallet.NewService(txRunner, wallet.NewRepository(conn), ledgerSvc)
	require.NoError(t, err)
	stockSvc, err := inventory.NewService(conn)
	require.NoError(t, err)

	engine, err := settlement.NewEngine(
		txRunner,
		orders.NewRepository(conn),
		sellersSvc,
		ledgerSvc,
		settlement.NewRepository(conn),
		platform.NewRepository(conn, 30),
		stockSvc,
		calc,
		notify.New(nil, logg),
		metrics.NewSettlementMetrics(nil),
		logg,
	)
	require.NoError(t, err)

	svc, err := NewService(txRunner, NewRepository(conn), orders.NewRepository(conn), engine, walletSvc, logg)
	require.NoError(t, err)

	return &harness{conn: conn, svc: svc, engine: engine, walletSvc: walletSvc}
}

type seededOrder struct {
	order   *models.Order
	buyerID uuid.UUID
	seller  uuid.UUID
	subID   uuid.UUID
}

// seedSettledOrder builds a delivered, already-settled single-seller order:
// 10000 base at 10% commission, so the seller holds 9000.
func (h *harness) seedSettledOrder(t *testing.T) *seededOrder {
	t.Helper()
	ctx := context.Background()

	sellerID := uuid.New()
	_, err := sellers.NewRepository(h.conn).GetOrCreate(ctx, sellerID)
	require.NoError(t, err)

	buyerID := uuid.New()
	order := &models.Order{
		BuyerID:       buyerID,
		OrderNumber:   7,
		PaymentStatus: enums.PaymentStatusPaid,
		CurrentStatus: enums.OrderStatusDelivered,
		TotalCents:    10000,
	}
	require.NoError(t, h.conn.Create(order).Error)
	subOrder := &models.SubOrder{OrderID: order.ID, SellerID: sellerID, BasePriceCents: 10000}
	require.NoError(t, h.conn.Create(subOrder).Error)

	_, err = h.engine.CreditSellersOnDelivery(ctx, order.ID, uuid.New())
	require.NoError(t, err)

	return &seededOrder{order: order, buyerID: buyerID, seller: sellerID, subID: subOrder.ID}
}

func TestRefundWorkflow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedSettledOrder(t)

	request, err := h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: seeded.buyerID,
		Reason:  "wrong size",
		Items:   []SubmitItem{{SubOrderID: seeded.subID, AmountCents: 6000}},
	})
	require.NoError(t, err)
	require.Len(t, request.Items, 1)
	require.Equal(t, enums.RefundItemStatusRequested, request.Items[0].Status)
	require.Equal(t, int64(6000), request.TotalRefundCents)
	require.Equal(t, seeded.seller, request.Items[0].SellerID)

	// Settling before review is a state conflict.
	_, err = h.svc.ApproveAndSettle(ctx, request.ID, types.Admin(uuid.New()))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	item, err := h.svc.SellerReview(ctx, ReviewInput{
		ItemID:  request.Items[0].ID,
		Approve: true,
		Note:    "accepted",
		Actor:   types.Actor{Type: enums.ActorTypeSeller, ID: seeded.seller},
	})
	require.NoError(t, err)
	require.Equal(t, enums.RefundItemStatusApproved, item.Status)

	result, err := h.svc.ApproveAndSettle(ctx, request.ID, types.Admin(uuid.New()))
	require.NoError(t, err)
	require.Equal(t, int64(6000), result.BuyerRefundCents)
	require.Len(t, result.Reversals, 1)
	require.Equal(t, int64(6000), result.Reversals[0].RemovedCents)

	// Seller clawed back, buyer made whole.
	balance, err := sellers.NewRepository(h.conn).Find(ctx, seeded.seller)
	require.NoError(t, err)
	require.Equal(t, int64(3000), balance.BalanceCents)

	buyerWallet, err := h.walletSvc.Balance(ctx, seeded.buyerID)
	require.NoError(t, err)
	require.Equal(t, int64(6000), buyerWallet.BalanceCents)

	// Retrying the settlement replays the wallet credit.
	retry, err := h.svc.ApproveAndSettle(ctx, request.ID, types.Admin(uuid.New()))
	require.NoError(t, err)
	require.True(t, retry.Replayed)
	buyerWallet, err = h.walletSvc.Balance(ctx, seeded.buyerID)
	require.NoError(t, err)
	require.Equal(t, int64(6000), buyerWallet.BalanceCents)
}

func TestSellerReviewReject(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedSettledOrder(t)

	request, err := h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: seeded.buyerID,
		Items:   []SubmitItem{{SubOrderID: seeded.subID, AmountCents: 2000}},
	})
	require.NoError(t, err)

	item, err := h.svc.SellerReview(ctx, ReviewInput{
		ItemID:  request.Items[0].ID,
		Approve: false,
		Note:    "signs of use",
		Actor:   types.Actor{Type: enums.ActorTypeSeller, ID: seeded.seller},
	})
	require.NoError(t, err)
	require.Equal(t, enums.RefundItemStatusRejected, item.Status)

	// Rejection is terminal.
	_, err = h.svc.SellerReview(ctx, ReviewInput{
		ItemID:  item.ID,
		Approve: true,
		Actor:   types.Actor{Type: enums.ActorTypeSeller, ID: seeded.seller},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	// A request with only rejected items settles as a no-op.
	result, err := h.svc.ApproveAndSettle(ctx, request.ID, types.Admin(uuid.New()))
	require.NoError(t, err)
	require.Equal(t, int64(0), result.BuyerRefundCents)
	require.Empty(t, result.Reversals)
}

func TestSellerReviewWrongSeller(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedSettledOrder(t)

	request, err := h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: seeded.buyerID,
		Items:   []SubmitItem{{SubOrderID: seeded.subID, AmountCents: 2000}},
	})
	require.NoError(t, err)

	_, err = h.svc.SellerReview(ctx, ReviewInput{
		ItemID:  request.Items[0].ID,
		Approve: true,
		Actor:   types.Actor{Type: enums.ActorTypeSeller, ID: uuid.New()},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSubmitRequestValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	seeded := h.seedSettledOrder(t)

	// Wrong buyer.
	_, err := h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: uuid.New(),
		Items:   []SubmitItem{{SubOrderID: seeded.subID, AmountCents: 100}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Amount over the sub-order total.
	_, err = h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: seeded.buyerID,
		Items:   []SubmitItem{{SubOrderID: seeded.subID, AmountCents: 10001}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Foreign sub-order.
	_, err = h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: seeded.order.ID,
		BuyerID: seeded.buyerID,
		Items:   []SubmitItem{{SubOrderID: uuid.New(), AmountCents: 100}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Unsettled order.
	unsettled := &models.Order{BuyerID: seeded.buyerID, OrderNumber: 8, CurrentStatus: enums.OrderStatusShipped, TotalCents: 100}
	require.NoError(t, h.conn.Create(unsettled).Error)
	sub := &models.SubOrder{OrderID: unsettled.ID, SellerID: uuid.New(), BasePriceCents: 100}
	require.NoError(t, h.conn.Create(sub).Error)
	_, err = h.svc.SubmitRequest(ctx, SubmitInput{
		OrderID: unsettled.ID,
		BuyerID: seeded.buyerID,
		Items:   []SubmitItem{{SubOrderID: sub.ID, AmountCents: 100}},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}
