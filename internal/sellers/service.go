package sellers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
)

// Service mutates seller balance aggregates. All methods expect to run
// inside the caller's transaction; they never open one of their own.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Find(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error)
	AddEarnings(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*models.SellerBalance, error)
	ReleasePending(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*models.SellerBalance, error)
	Debit(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*DebitResult, error)
}

// DebitResult reports how much was actually removed from the balance. A
// shortfall is clamped: the balance lands on zero and the remainder is
// tracked in NegativeCents, never a hard failure.
type DebitResult struct {
	Balance        *models.SellerBalance
	RequestedCents int64
	RemovedCents   int64
	ShortfallCents int64
}

type service struct {
	repo Repository
}

// NewService wires a seller balance service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller balance repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Find(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	return s.repo.Find(ctx, sellerID)
}

func (s *service) AddEarnings(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*models.SellerBalance, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "earnings amount must be positive")
	}

	balance, err := s.repo.GetOrCreate(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller balance")
	}

	balance.BalanceCents += amountCents
	balance.RecomputeWithdrawable()
	if err := s.repo.Save(ctx, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save seller balance")
	}
	return balance, nil
}

// ReleasePending moves held funds into the spendable balance, capped at
// whatever is actually pending.
func (s *service) ReleasePending(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*models.SellerBalance, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release amount must be positive")
	}

	balance, err := s.repo.GetOrCreate(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller balance")
	}

	released := amountCents
	if balance.PendingCents < released {
		released = balance.PendingCents
	}
	balance.PendingCents -= released
	balance.BalanceCents += released
	balance.RecomputeWithdrawable()
	if err := s.repo.Save(ctx, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save seller balance")
	}
	return balance, nil
}

func (s *service) Debit(ctx context.Context, sellerID uuid.UUID, amountCents int64) (*DebitResult, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	balance, err := s.repo.GetOrCreate(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller balance")
	}

	removed := amountCents
	shortfall := int64(0)
	if balance.BalanceCents < amountCents {
		removed = balance.BalanceCents
		shortfall = amountCents - removed
	}

	balance.BalanceCents -= removed
	balance.NegativeCents += shortfall
	balance.RecomputeWithdrawable()
	if err := s.repo.Save(ctx, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save seller balance")
	}

	return &DebitResult{
		Balance:        balance,
		RequestedCents: amountCents,
		RemovedCents:   removed,
		ShortfallCents: shortfall,
	}, nil
}
