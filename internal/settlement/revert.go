package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/internal/ledger"
	"github.com/fekt2016/eaz-back-sub005/internal/notify"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

// RevertSellersOnRefund reverses every seller credit on the order: each
// seller is debited the amount originally credited, with the debit clamped
// at zero and the shortfall tracked as deficit. Platform revenue gives back
// the fee share of the reversed sub-orders.
func (e *engine) RevertSellersOnRefund(ctx context.Context, orderID uuid.UUID, reason string, actor types.Actor) (*RevertResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	ctx = e.logg.WithOrderID(ctx, orderID.String())

	var result *RevertResult
	var totalReversed int64
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

		if !order.SettlementState.Settled() {
			result = &RevertResult{
				Success: false,
				Message: fmt.Sprintf("order in state %s has no settled credits to reverse", order.SettlementState),
			}
			return nil
		}

		credits, err := txRepo.ListByOrder(ctx, order.ID, enums.SettlementDirectionCredit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order credits")
		}
		if len(credits) == 0 {
			result = &RevertResult{Success: true, Message: "no credits to reverse"}
			return nil
		}

		subOrdersByID := make(map[uuid.UUID]*models.SubOrder, len(order.SubOrders))
		for i := range order.SubOrders {
			subOrdersByID[order.SubOrders[i].ID] = &order.SubOrders[i]
		}

		reversals := make([]Reversal, 0, len(credits))
		var reversedFee int64
		for i := range credits {
			credit := &credits[i]
			reversal, err := e.reverseCredit(ctx, tx, order, credit, credit.AmountCents, reason, actor, nil)
			if err != nil {
				return err
			}
			if reversal == nil {
				continue
			}
			reversals = append(reversals, *reversal)
			totalReversed += reversal.RemovedCents

			if subOrder, ok := subOrdersByID[credit.SubOrderID]; ok {
				fee, err := e.calc.PlatformFee(subOrder.BasePriceCents, subOrder.ShippingCents, subOrder.CommissionBps)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute reversed fee")
				}
				reversedFee += fee
			}
		}

		if reversedFee > 0 {
			if _, err := statsRepo.ReverseRevenue(ctx, reversedFee, order.CreatedAt); err != nil {
				return err
			}
		}

		if order.SettlementState.CanTransitionTo(enums.SettlementStateFullyReversed) {
			if err := ordersRepo.UpdateSettlementState(ctx, order.ID, enums.SettlementStateFullyReversed); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settlement state")
			}
		}
		if err := ordersRepo.MarkRefunded(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order refunded")
		}

		result = &RevertResult{
			Success:   true,
			Reversals: reversals,
			Message:   fmt.Sprintf("reversed %d credit(s)", len(reversals)),
		}
		return nil
	})
	if err != nil {
		e.metrics.ObserveOperation("revert_sellers", "error")
		return nil, err
	}

	e.finishReversal(ctx, orderID, result, totalReversed, "revert_sellers")
	return result, nil
}

// RevertSellersForItems reverses only the supplied refund line items,
// grouped by seller. Each sub-order's credit can be reversed once; a
// sub-order whose full credit is clawed back moves its payout to hold.
func (e *engine) RevertSellersForItems(ctx context.Context, orderID uuid.UUID, items []RefundLineItem, reason string, actor types.Actor) (*RevertResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one refund line item required")
	}
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	for _, item := range items {
		if item.SubOrderID == uuid.Nil || item.SellerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund line items must carry sub-order and seller ids")
		}
		if item.AmountCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund line item amount must be positive")
		}
	}

	ctx = e.logg.WithOrderID(ctx, orderID.String())

	var result *RevertResult
	var totalReversed int64
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
		if !order.SettlementState.Settled() {
			result = &RevertResult{
				Success: false,
				Message: fmt.Sprintf("order in state %s has no settled credits to reverse", order.SettlementState),
			}
			return nil
		}

		// One reversal per sub-order: amounts for the same sub-order are
		// accumulated before matching against the original credit.
		amountBySubOrder := make(map[uuid.UUID]int64)
		refundBySubOrder := make(map[uuid.UUID]*uuid.UUID)
		sellerBySubOrder := make(map[uuid.UUID]uuid.UUID)
		for _, item := range items {
			amountBySubOrder[item.SubOrderID] += item.AmountCents
			sellerBySubOrder[item.SubOrderID] = item.SellerID
			if item.RefundID != nil {
				refundBySubOrder[item.SubOrderID] = item.RefundID
			}
		}

		reversals := make([]Reversal, 0, len(amountBySubOrder))
		var reversedFee int64
		for subOrderID, requested := range amountBySubOrder {
			sellerID := sellerBySubOrder[subOrderID]
			itemCtx := e.logg.WithSellerID(ctx, sellerID.String())

			credit, err := txRepo.FindBySubOrder(ctx, subOrderID, sellerID, enums.SettlementDirectionCredit)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find credit for sub-order")
			}
			if credit == nil {
				e.logg.Warn(itemCtx, "no credit found for refund line item, skipping")
				continue
			}

			amount := requested
			if amount > credit.AmountCents {
				amount = credit.AmountCents
			}

			reversal, err := e.reverseCredit(ctx, tx, order, credit, amount, reason, actor, refundBySubOrder[subOrderID])
			if err != nil {
				return err
			}
			if reversal == nil {
				continue
			}
			reversals = append(reversals, *reversal)
			totalReversed += reversal.RemovedCents

			// The fee gives back proportionally to the clawed-back payout.
			if credit.AmountCents > 0 {
				for i := range order.SubOrders {
					subOrder := &order.SubOrders[i]
					if subOrder.ID != subOrderID {
						continue
					}
					fee, err := e.calc.PlatformFee(subOrder.BasePriceCents, subOrder.ShippingCents, subOrder.CommissionBps)
					if err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute reversed fee")
					}
					reversedFee += fee * amount / credit.AmountCents
				}
			}
		}

		if len(reversals) == 0 {
			result = &RevertResult{Success: true, Message: "nothing to reverse"}
			return nil
		}

		if reversedFee > 0 {
			if _, err := statsRepo.ReverseRevenue(ctx, reversedFee, order.CreatedAt); err != nil {
				return err
			}
		}

		target := enums.SettlementStatePartiallyReversed
		fullyReversed, err := e.allCreditsReversed(ctx, txRepo, order.ID)
		if err != nil {
			return err
		}
		if fullyReversed {
			target = enums.SettlementStateFullyReversed
		}
		if order.SettlementState.CanTransitionTo(target) {
			if err := ordersRepo.UpdateSettlementState(ctx, order.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settlement state")
			}
		}

		result = &RevertResult{
			Success:   true,
			Reversals: reversals,
			Message:   fmt.Sprintf("reversed %d sub-order credit(s)", len(reversals)),
		}
		return nil
	})
	if err != nil {
		e.metrics.ObserveOperation("revert_items", "error")
		return nil, err
	}

	e.finishReversal(ctx, orderID, result, totalReversed, "revert_items")
	return result, nil
}

// reverseCredit debits the seller for one prior credit and records the
// reversal ledger entry plus the debit settlement transaction. The ledger
// amount is the amount actually removed from the balance, not the amount
// requested, so the entry's before/after stay consistent when the debit
// was clamped.
func (e *engine) reverseCredit(
	ctx context.Context,
	tx *gorm.DB,
	order *models.Order,
	credit *models.SettlementTransaction,
	amountCents int64,
	reason string,
	actor types.Actor,
	refundID *uuid.UUID,
) (*Reversal, error) {
	sellersSvc := e.sellers.WithTx(tx)
	ledgerSvc := e.ledger.WithTx(tx)
	txRepo := e.txRepo.WithTx(tx)
	ordersRepo := e.orders.WithTx(tx)

	sellerCtx := e.logg.WithSellerID(ctx, credit.SellerID.String())

	existing, err := txRepo.FindBySubOrder(ctx, credit.SubOrderID, credit.SellerID, enums.SettlementDirectionDebit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior reversal")
	}
	if existing != nil {
		e.logg.Warn(sellerCtx, "reversal already exists for sub-order, skipping")
		return nil, nil
	}

	// Same ordering rule as the credit path: the reference is checked
	// before the balance moves, so a replay can never commit a clamped
	// debit without its ledger entry.
	reference := fmt.Sprintf("reversal:%s", credit.SubOrderID)
	prior, err := ledgerSvc.FindByReference(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check reversal ledger reference")
	}
	if prior != nil {
		e.logg.Warn(sellerCtx, "reversal ledger entry already exists, skipping")
		return nil, nil
	}

	debit, err := sellersSvc.Debit(ctx, credit.SellerID, amountCents)
	if err != nil {
		return nil, err
	}

	orderRef := order.ID
	after := debit.Balance.BalanceCents
	before := after + debit.RemovedCents
	appended, err := ledgerSvc.Append(ctx, ledger.AppendInput{
		AccountType:        enums.LedgerAccountSellerRevenue,
		AccountID:          credit.SellerID,
		Type:               enums.LedgerEntryTypeEarningsReversal,
		AmountCents:        -debit.RemovedCents,
		BalanceBeforeCents: before,
		BalanceAfterCents:  after,
		Reference:          &reference,
		OrderID:            &orderRef,
		RefundID:           refundID,
		Actor:              actor,
	})
	if err != nil {
		return nil, err
	}
	if appended.Replayed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "reversal ledger reference appeared mid-reversal").
			WithDetails(map[string]any{"reference": reference})
	}

	relatedID := credit.ID
	transaction := &models.SettlementTransaction{
		OrderID:              order.ID,
		SubOrderID:           credit.SubOrderID,
		SellerID:             credit.SellerID,
		Direction:            enums.SettlementDirectionDebit,
		AmountCents:          debit.RemovedCents,
		RelatedTransactionID: &relatedID,
	}
	if reason != "" {
		transaction.Reason = &reason
	}
	if err := txRepo.Create(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reversal transaction")
	}

	// Full claw-back puts the sub-order's payout on hold.
	if amountCents >= credit.AmountCents {
		if err := ordersRepo.UpdateSubOrderPayoutStatus(ctx, credit.SubOrderID, enums.PayoutStatusHold); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hold sub-order payout")
		}
	}

	return &Reversal{
		SellerID:       credit.SellerID,
		SubOrderID:     credit.SubOrderID,
		RequestedCents: amountCents,
		RemovedCents:   debit.RemovedCents,
		ShortfallCents: debit.ShortfallCents,
		TransactionID:  transaction.ID,
	}, nil
}

func (e *engine) allCreditsReversed(ctx context.Context, txRepo Repository, orderID uuid.UUID) (bool, error) {
	credits, err := txRepo.ListByOrder(ctx, orderID, enums.SettlementDirectionCredit)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list credits")
	}
	debits, err := txRepo.ListByOrder(ctx, orderID, enums.SettlementDirectionDebit)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list debits")
	}

	reversed := make(map[uuid.UUID]int64, len(debits))
	for _, debit := range debits {
		reversed[debit.SubOrderID] = debit.AmountCents
	}
	for _, credit := range credits {
		if reversed[credit.SubOrderID] < credit.AmountCents {
			return false, nil
		}
	}
	return true, nil
}

func (e *engine) finishReversal(ctx context.Context, orderID uuid.UUID, result *RevertResult, totalReversed int64, operation string) {
	switch {
	case result == nil:
	case !result.Success:
		e.metrics.ObserveOperation(operation, "precondition")
	case len(result.Reversals) == 0:
		e.metrics.ObserveOperation(operation, "noop")
	default:
		e.metrics.ObserveOperation(operation, "applied")
		e.metrics.AddReversal(totalReversed)
		e.notifier.Publish(ctx, notify.Event{
			Type:       notify.EventSellersReversed,
			OrderID:    orderID,
			AmountCent: totalReversed,
		})
	}
}
