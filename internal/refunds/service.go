package refunds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/internal/orders"
	"github.com/fekt2016/eaz-back-sub005/internal/settlement"
	"github.com/fekt2016/eaz-back-sub005/internal/wallet"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the refund workflow: buyers submit a request, sellers
// review their own line items, and an approved request settles by clawing
// back seller earnings and crediting the buyer's wallet.
type Service interface {
	SubmitRequest(ctx context.Context, input SubmitInput) (*models.RefundRequest, error)
	SellerReview(ctx context.Context, input ReviewInput) (*models.RefundItem, error)
	ApproveAndSettle(ctx context.Context, requestID uuid.UUID, actor types.Actor) (*SettleResult, error)
}

// SubmitInput is a buyer's refund request over one or more sub-order
// lines of a single order.
type SubmitInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Reason  string
	Items   []SubmitItem
}

// SubmitItem is one refund line: the sub-order it belongs to and the
// amount the buyer asks back for it.
type SubmitItem struct {
	SubOrderID  uuid.UUID
	AmountCents int64
}

// ReviewInput is a seller's (or admin's) decision on one refund item.
type ReviewInput struct {
	ItemID  uuid.UUID
	Approve bool
	Note    string
	Actor   types.Actor
}

// SettleResult reports the financial outcome of settling an approved
// request: what moved out of seller balances and what landed in the
// buyer's wallet.
type SettleResult struct {
	Request          *models.RefundRequest
	Reversals        []settlement.Reversal
	BuyerRefundCents int64
	Replayed         bool
}

type service struct {
	tx     txRunner
	repo   Repository
	orders orders.Repository
	engine settlement.Engine
	wallet wallet.Service
	logg   *logger.Logger
}

func NewService(
	tx txRunner,
	repo Repository,
	ordersRepo orders.Repository,
	engine settlement.Engine,
	walletSvc wallet.Service,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("refunds: tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("refunds: repository is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("refunds: orders repository is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("refunds: settlement engine is required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("refunds: wallet service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("refunds: logger is required")
	}
	return &service{
		tx:     tx,
		repo:   repo,
		orders: ordersRepo,
		engine: engine,
		wallet: walletSvc,
		logg:   logg,
	}, nil
}

// SubmitRequest validates the refund lines against the order and records
// the request with every item awaiting its seller's review.
func (s *service) SubmitRequest(ctx context.Context, input SubmitInput) (*models.RefundRequest, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one refund item required")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())

	var request *models.RefundRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		repo := s.repo.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order does not belong to buyer")
		}
		if !order.SettlementState.Settled() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refunds are accepted only after the order settles").
				WithDetails(map[string]any{"settlement_state": order.SettlementState})
		}

		subOrdersByID := make(map[uuid.UUID]*models.SubOrder, len(order.SubOrders))
		for i := range order.SubOrders {
			subOrdersByID[order.SubOrders[i].ID] = &order.SubOrders[i]
		}

		var total int64
		items := make([]models.RefundItem, 0, len(input.Items))
		for _, line := range input.Items {
			subOrder, ok := subOrdersByID[line.SubOrderID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "sub-order does not belong to order").
					WithDetails(map[string]any{"sub_order_id": line.SubOrderID})
			}
			if line.AmountCents <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "refund item amount must be positive")
			}
			if line.AmountCents > subOrder.BasePriceCents+subOrder.ShippingCents {
				return pkgerrors.New(pkgerrors.CodeValidation, "refund item amount exceeds sub-order total").
					WithDetails(map[string]any{
						"sub_order_id":    line.SubOrderID,
						"requested_cents": line.AmountCents,
						"sub_order_cents": subOrder.BasePriceCents + subOrder.ShippingCents,
					})
			}
			items = append(items, models.RefundItem{
				SubOrderID:  line.SubOrderID,
				SellerID:    subOrder.SellerID,
				AmountCents: line.AmountCents,
				Status:      enums.RefundItemStatusRequested,
			})
			total += line.AmountCents
		}

		request = &models.RefundRequest{
			OrderID:          order.ID,
			BuyerID:          input.BuyerID,
			TotalRefundCents: total,
			Items:            items,
		}
		if input.Reason != "" {
			request.Reason = &input.Reason
		}
		if err := repo.Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "refund request submitted")
	return request, nil
}

// SellerReview records the decision on one item. An item still in
// requested state moves through seller_review on the way to its decision;
// a decided item cannot be reviewed again.
func (s *service) SellerReview(ctx context.Context, input ReviewInput) (*models.RefundItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund item id required")
	}
	if err := input.Actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	var item *models.RefundItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund item")
		}
		if found.Status.Terminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund item already decided").
				WithDetails(map[string]any{"status": found.Status})
		}
		if input.Actor.Type == enums.ActorTypeSeller && input.Actor.ID != found.SellerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund item belongs to another seller")
		}

		if found.Status == enums.RefundItemStatusRequested {
			found.Status = enums.RefundItemStatusSellerReview
		}
		target := enums.RefundItemStatusRejected
		if input.Approve {
			target = enums.RefundItemStatusApproved
		}
		if !found.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid refund item transition").
				WithDetails(map[string]any{"from": found.Status, "to": target})
		}
		found.Status = target
		reviewerType := input.Actor.Type
		found.ReviewedByType = &reviewerType
		if input.Actor.ID != uuid.Nil {
			reviewerID := input.Actor.ID
			found.ReviewedByID = &reviewerID
		}
		if input.Note != "" {
			found.ReviewNote = &input.Note
		}
		if err := repo.SaveItem(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save refund item")
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ApproveAndSettle settles every approved item of the request: seller
// earnings are reversed through the settlement engine, then the buyer's
// wallet is credited the approved total. Both legs are idempotent by
// reference, so a retry after a partial failure completes the remainder
// without double-moving money.
func (s *service) ApproveAndSettle(ctx context.Context, requestID uuid.UUID, actor types.Actor) (*SettleResult, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund request id required")
	}
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	request, err := s.repo.Find(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund request")
	}

	ctx = s.logg.WithOrderID(ctx, request.OrderID.String())

	refundID := request.ID
	lines := make([]settlement.RefundLineItem, 0, len(request.Items))
	var approvedTotal int64
	var pending int
	for _, item := range request.Items {
		switch item.Status {
		case enums.RefundItemStatusApproved:
			lines = append(lines, settlement.RefundLineItem{
				SubOrderID:  item.SubOrderID,
				SellerID:    item.SellerID,
				AmountCents: item.AmountCents,
				RefundID:    &refundID,
			})
			approvedTotal += item.AmountCents
		case enums.RefundItemStatusRejected:
		default:
			pending++
		}
	}
	if pending > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "refund request has items awaiting review").
			WithDetails(map[string]any{"pending_items": pending})
	}
	if len(lines) == 0 {
		return &SettleResult{Request: request, Replayed: request.FinalRefundCents > 0}, nil
	}

	reason := "refund approved"
	if request.Reason != nil {
		reason = *request.Reason
	}
	revert, err := s.engine.RevertSellersForItems(ctx, request.OrderID, lines, reason, actor)
	if err != nil {
		return nil, err
	}

	// The buyer gets the approved amount back regardless of how much the
	// seller balances could cover; any shortfall is carried on the seller
	// deficit trackers.
	credit, err := s.wallet.Credit(ctx, wallet.MutationInput{
		UserID:      request.BuyerID,
		AmountCents: approvedTotal,
		Type:        enums.LedgerEntryTypeRefund,
		Description: reason,
		Reference:   fmt.Sprintf("refund:%s", request.ID),
		OrderID:     &request.OrderID,
		RefundID:    &refundID,
		Actor:       actor,
	})
	if err != nil {
		return nil, err
	}

	if request.FinalRefundCents != approvedTotal {
		request.FinalRefundCents = approvedTotal
		if err := s.repo.Save(ctx, request); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save refund request")
		}
	}

	s.logg.Info(ctx, "refund request settled")
	return &SettleResult{
		Request:          request,
		Reversals:        revert.Reversals,
		BuyerRefundCents: approvedTotal,
		Replayed:         credit.Replayed,
	}, nil
}
