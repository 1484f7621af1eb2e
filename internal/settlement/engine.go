package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/internal/inventory"
	"github.com/fekt2016/eaz-back-sub005/internal/ledger"
	"github.com/fekt2016/eaz-back-sub005/internal/notify"
	"github.com/fekt2016/eaz-back-sub005/internal/orders"
	"github.com/fekt2016/eaz-back-sub005/internal/platform"
	"github.com/fekt2016/eaz-back-sub005/internal/sellers"
	"github.com/fekt2016/eaz-back-sub005/internal/taxes"
	"github.com/fekt2016/eaz-back-sub005/pkg/db"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
	"github.com/fekt2016/eaz-back-sub005/pkg/metrics"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Engine orchestrates one order-lifecycle event's full set of balance,
// ledger, stats and inventory mutations inside a single transaction. It is
// the only writer of seller balances, wallet-adjacent ledger entries for
// settlement, and platform stats; request handlers never mutate them
// directly.
type Engine interface {
	RecognizePayment(ctx context.Context, input RecognizePaymentInput) (*RecognizePaymentResult, error)
	CreditSellersOnDelivery(ctx context.Context, orderID, actorID uuid.UUID) (*CreditResult, error)
	RevertSellersOnRefund(ctx context.Context, orderID uuid.UUID, reason string, actor types.Actor) (*RevertResult, error)
	RevertSellersForItems(ctx context.Context, orderID uuid.UUID, items []RefundLineItem, reason string, actor types.Actor) (*RevertResult, error)
}

type engine struct {
	tx       txRunner
	orders   orders.Repository
	sellers  sellers.Service
	ledger   ledger.Service
	txRepo   Repository
	stats    platform.Repository
	stock    inventory.Service
	calc     *taxes.Calculator
	notifier *notify.Notifier
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
}

// NewEngine wires the settlement engine with its collaborators. Notifier
// and metrics may be nil; their absence never changes settlement outcomes.
func NewEngine(
	tx txRunner,
	ordersRepo orders.Repository,
	sellersSvc sellers.Service,
	ledgerSvc ledger.Service,
	txRepo Repository,
	statsRepo platform.Repository,
	stockSvc inventory.Service,
	calc *taxes.Calculator,
	notifier *notify.Notifier,
	settlementMetrics *metrics.SettlementMetrics,
	logg *logger.Logger,
) (Engine, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if sellersSvc == nil {
		return nil, fmt.Errorf("sellers service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if txRepo == nil {
		return nil, fmt.Errorf("settlement transaction repository required")
	}
	if statsRepo == nil {
		return nil, fmt.Errorf("platform stats repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if calc == nil {
		return nil, fmt.Errorf("tax calculator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &engine{
		tx:       tx,
		orders:   ordersRepo,
		sellers:  sellersSvc,
		ledger:   ledgerSvc,
		txRepo:   txRepo,
		stats:    statsRepo,
		stock:    stockSvc,
		calc:     calc,
		notifier: notifier,
		metrics:  settlementMetrics,
		logg:     logg,
	}, nil
}

// RecognizePayment marks an order paid and recognizes the platform's
// revenue share. It is invoked by the payment webhook and by admin payment
// confirmation; duplicate triggers resolve as a replayed no-op.
func (e *engine) RecognizePayment(ctx context.Context, input RecognizePaymentInput) (*RecognizePaymentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}
	if err := input.Actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	ctx = e.logg.WithOrderID(ctx, input.OrderID.String())

	var result *RecognizePaymentResult
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := e.orders.WithTx(tx)
		statsRepo := e.stats.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentStatus == enums.PaymentStatusPaid || order.SettlementState != enums.SettlementStatePendingPayment {
			result = &RecognizePaymentResult{
				Success:  true,
				Replayed: true,
				Message:  "payment already recognized",
			}
			return nil
		}
		if order.PaymentReference != nil && *order.PaymentReference == input.Reference {
			result = &RecognizePaymentResult{
				Success:  true,
				Replayed: true,
				Message:  "payment reference already applied",
			}
			return nil
		}

		if input.AmountCents != order.TotalCents {
			e.logg.Warn(ctx, fmt.Sprintf("gateway reported %d cents for an order totalling %d cents",
				input.AmountCents, order.TotalCents))
		}

		if err := ordersRepo.MarkPaymentRecognized(ctx, order.ID, input.Reference); err != nil {
			if db.IsUniqueViolation(err, "ux_orders_payment_reference") {
				// The same-order replay was handled above, so the gateway
				// reference is held by a different order. This order's
				// payment is still pending; a replay result here would
				// mask the collision.
				return pkgerrors.New(pkgerrors.CodeConflict, "payment reference already used by another order").
					WithDetails(map[string]any{"reference": input.Reference})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment recognized")
		}

		fee, err := e.orderPlatformFee(order)
		if err != nil {
			return err
		}
		if fee > 0 {
			if _, err := statsRepo.RecordRevenue(ctx, fee, order.CreatedAt); err != nil {
				return err
			}
		}

		result = &RecognizePaymentResult{Success: true, Message: "payment recognized"}
		return nil
	})
	if err != nil {
		e.metrics.ObserveOperation("recognize_payment", "error")
		return nil, err
	}

	if !result.Replayed {
		e.metrics.ObserveOperation("recognize_payment", "applied")
		e.notifier.Publish(ctx, notify.Event{
			Type:       notify.EventPaymentRecognized,
			OrderID:    input.OrderID,
			AmountCent: input.AmountCents,
		})
	} else {
		e.metrics.ObserveOperation("recognize_payment", "replayed")
	}
	return result, nil
}

// CreditSellersOnDelivery settles a delivered order: every sub-order's
// seller earns (base + shipping) x (1 - commission), balances and ledgers
// move together, stock is reduced, and the platform counters reconcile.
// All of it commits atomically or not at all; the one bounded exception is
// a missing seller record, which is logged and skipped so sibling sellers
// still get paid.
func (e *engine) CreditSellersOnDelivery(ctx context.Context, orderID, actorID uuid.UUID) (*CreditResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}

	ctx = e.logg.WithOrderID(ctx, orderID.String())
	actor := types.Admin(actorID)

	var result *CreditResult
	var totalPayout int64
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := e.orders.WithTx(tx)
		txRepo := e.txRepo.WithTx(tx)
		statsRepo := e.stats.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.CurrentStatus != enums.OrderStatusDelivered {
			result = &CreditResult{
				Success: false,
				Message: fmt.Sprintf("order is %s, not delivered", order.CurrentStatus),
			}
			return nil
		}
		if order.SettlementState.Settled() {
			updates, err := e.priorUpdates(ctx, txRepo, order.ID)
			if err != nil {
				return err
			}
			result = &CreditResult{
				Success:        true,
				AlreadySettled: true,
				Updates:        updates,
				Message:        "sellers already credited",
			}
			return nil
		}

		updates := make([]SellerUpdate, 0, len(order.SubOrders))
		for i := range order.SubOrders {
			subOrder := &order.SubOrders[i]
			update, err := e.creditSubOrder(ctx, tx, order, subOrder, actor)
			if err != nil {
				return err
			}
			if update == nil {
				continue
			}
			updates = append(updates, *update)
			totalPayout += update.AmountCents
			if err := ordersRepo.UpdateSubOrderPayoutStatus(ctx, subOrder.ID, enums.PayoutStatusPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payout status")
			}
		}

		// Revenue is recognized at payment time when possible; orders that
		// reach delivery without a recognized payment fall back to
		// recognition here.
		if order.SettlementState == enums.SettlementStatePendingPayment {
			fee, err := e.orderPlatformFee(order)
			if err != nil {
				return err
			}
			if fee > 0 {
				if _, err := statsRepo.RecordRevenue(ctx, fee, order.CreatedAt); err != nil {
					return err
				}
			}
		}

		units := int64(0)
		for _, item := range order.Items {
			units += int64(item.Qty)
		}
		if _, err := statsRepo.RecordDelivery(ctx, 1, units); err != nil {
			return err
		}

		if _, err := e.stock.WithTx(tx).ReduceOrderStock(ctx, order); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
				e.metrics.IncStockConflict()
			}
			return err
		}

		if !order.SettlementState.CanTransitionTo(enums.SettlementStateDeliveredAndSettled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot settle order in state %s", order.SettlementState))
		}
		if err := ordersRepo.UpdateSettlementState(ctx, order.ID, enums.SettlementStateDeliveredAndSettled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settlement state")
		}

		result = &CreditResult{
			Success: true,
			Updates: updates,
			Message: fmt.Sprintf("credited %d seller(s)", len(updates)),
		}
		return nil
	})
	if err != nil {
		e.metrics.ObserveOperation("credit_sellers", "error")
		return nil, err
	}

	switch {
	case !result.Success:
		e.metrics.ObserveOperation("credit_sellers", "precondition")
	case result.AlreadySettled:
		e.metrics.ObserveOperation("credit_sellers", "replayed")
	default:
		e.metrics.ObserveOperation("credit_sellers", "applied")
		e.metrics.AddPayout(totalPayout)
		e.notifier.Publish(ctx, notify.Event{
			Type:       notify.EventSellersCredited,
			OrderID:    orderID,
			AmountCent: totalPayout,
		})
	}
	return result, nil
}

func (e *engine) creditSubOrder(ctx context.Context, tx *gorm.DB, order *models.Order, subOrder *models.SubOrder, actor types.Actor) (*SellerUpdate, error) {
	sellersSvc := e.sellers.WithTx(tx)
	ledgerSvc := e.ledger.WithTx(tx)
	txRepo := e.txRepo.WithTx(tx)

	sellerCtx := e.logg.WithSellerID(ctx, subOrder.SellerID.String())

	earnings, err := e.calc.SellerEarnings(subOrder.BasePriceCents, subOrder.ShippingCents, subOrder.CommissionBps)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute seller earnings")
	}
	if earnings <= 0 {
		e.logg.Warn(sellerCtx, "skipping sub-order with non-positive earnings")
		return nil, nil
	}

	existing, err := txRepo.FindBySubOrder(ctx, subOrder.ID, subOrder.SellerID, enums.SettlementDirectionCredit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior credit")
	}
	if existing != nil {
		e.logg.Warn(sellerCtx, "credit already exists for sub-order, skipping")
		return nil, nil
	}

	// A missing seller record is logged and skipped so the other sellers
	// on the order still settle. Any other failure aborts the whole
	// transaction.
	balance, err := sellersSvc.Find(ctx, subOrder.SellerID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		e.logg.Warn(sellerCtx, "seller balance record missing, skipping credit")
		return nil, nil
	}

	// The ledger reference is checked before the balance moves: skipping
	// after AddEarnings would commit a balance change with no ledger entry.
	reference := fmt.Sprintf("payout:%s", subOrder.ID)
	prior, err := ledgerSvc.FindByReference(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check payout ledger reference")
	}
	if prior != nil {
		e.logg.Warn(sellerCtx, "payout ledger entry already exists, skipping credit")
		return nil, nil
	}

	before := balance.BalanceCents
	if _, err := sellersSvc.AddEarnings(ctx, subOrder.SellerID, earnings); err != nil {
		return nil, err
	}

	orderRef := order.ID
	appended, err := ledgerSvc.Append(ctx, ledger.AppendInput{
		AccountType:        enums.LedgerAccountSellerRevenue,
		AccountID:          subOrder.SellerID,
		Type:               enums.LedgerEntryTypeOrderEarnings,
		AmountCents:        earnings,
		BalanceBeforeCents: before,
		BalanceAfterCents:  before + earnings,
		Reference:          &reference,
		OrderID:            &orderRef,
		Actor:              actor,
	})
	if err != nil {
		return nil, err
	}
	if appended.Replayed {
		// The balance already moved inside this transaction; abort so the
		// commit cannot separate the mutation from its ledger entry.
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payout ledger reference appeared mid-settlement").
			WithDetails(map[string]any{"reference": reference})
	}

	transaction := &models.SettlementTransaction{
		OrderID:     order.ID,
		SubOrderID:  subOrder.ID,
		SellerID:    subOrder.SellerID,
		Direction:   enums.SettlementDirectionCredit,
		AmountCents: earnings,
	}
	if err := txRepo.Create(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement transaction")
	}

	return &SellerUpdate{
		SellerID:      subOrder.SellerID,
		AmountCents:   earnings,
		TransactionID: transaction.ID,
	}, nil
}

func (e *engine) priorUpdates(ctx context.Context, txRepo Repository, orderID uuid.UUID) ([]SellerUpdate, error) {
	credits, err := txRepo.ListByOrder(ctx, orderID, enums.SettlementDirectionCredit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prior credits")
	}
	updates := make([]SellerUpdate, 0, len(credits))
	for _, credit := range credits {
		updates = append(updates, SellerUpdate{
			SellerID:      credit.SellerID,
			AmountCents:   credit.AmountCents,
			TransactionID: credit.ID,
		})
	}
	return updates, nil
}

// orderPlatformFee is the platform's share of the order: gross sub-order
// value minus total projected seller payouts.
func (e *engine) orderPlatformFee(order *models.Order) (int64, error) {
	var fee int64
	for _, subOrder := range order.SubOrders {
		subFee, err := e.calc.PlatformFee(subOrder.BasePriceCents, subOrder.ShippingCents, subOrder.CommissionBps)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute platform fee")
		}
		fee += subFee
	}
	return fee, nil
}
