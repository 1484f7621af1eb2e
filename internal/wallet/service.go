package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/internal/ledger"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service moves money in and out of buyer wallets. Credits always succeed;
// debits fail when funds are insufficient. Both are idempotent by
// reference: a repeat call with a reference already on the ledger returns
// the prior transaction unchanged.
type Service interface {
	Credit(ctx context.Context, input MutationInput) (*MutationResult, error)
	Debit(ctx context.Context, input MutationInput) (*MutationResult, error)
	ApplyCredit(ctx context.Context, tx *gorm.DB, input MutationInput) (*MutationResult, error)
	ApplyDebit(ctx context.Context, tx *gorm.DB, input MutationInput) (*MutationResult, error)
	Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
}

// MutationInput describes one wallet credit or debit.
type MutationInput struct {
	UserID      uuid.UUID
	AmountCents int64
	Type        enums.LedgerEntryType
	Description string
	Reference   string
	OrderID     *uuid.UUID
	RefundID    *uuid.UUID
	Actor       types.Actor
	Metadata    json.RawMessage
}

// MutationResult pairs the ledger transaction with the wallet state after
// the mutation. Replayed marks an idempotent repeat.
type MutationResult struct {
	Transaction *models.LedgerEntry
	Wallet      *models.Wallet
	Replayed    bool
}

type service struct {
	tx     txRunner
	repo   Repository
	ledger ledger.Service
}

// NewService wires the wallet service.
func NewService(tx txRunner, repo Repository, ledgerSvc ledger.Service) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{tx: tx, repo: repo, ledger: ledgerSvc}, nil
}

func (s *service) Credit(ctx context.Context, input MutationInput) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var applyErr error
		result, applyErr = s.ApplyCredit(ctx, tx, input)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Debit(ctx context.Context, input MutationInput) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var applyErr error
		result, applyErr = s.ApplyDebit(ctx, tx, input)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyCredit runs the credit inside the supplied transaction so callers
// can compose it with other settlement mutations.
func (s *service) ApplyCredit(ctx context.Context, tx *gorm.DB, input MutationInput) (*MutationResult, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}
	return s.apply(ctx, tx, input, input.AmountCents)
}

// ApplyDebit runs the debit inside the supplied transaction. It fails with
// INSUFFICIENT_FUNDS when the wallet cannot cover the amount; the buyer
// side tracks no deficit.
func (s *service) ApplyDebit(ctx context.Context, tx *gorm.DB, input MutationInput) (*MutationResult, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}
	return s.apply(ctx, tx, input, -input.AmountCents)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, input MutationInput, signedAmount int64) (*MutationResult, error) {
	repo := s.repo.WithTx(tx)
	ledgerSvc := s.ledger.WithTx(tx)

	if input.Reference != "" {
		existing, err := ledgerSvc.FindByReference(ctx, input.Reference)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wallet mutation reference")
		}
		if existing != nil {
			wallet, err := repo.GetOrCreate(ctx, input.UserID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
			}
			return &MutationResult{Transaction: existing, Wallet: wallet, Replayed: true}, nil
		}
	}

	wallet, err := repo.GetOrCreate(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}

	if signedAmount < 0 && wallet.BalanceCents+signedAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance too low").
			WithDetails(map[string]int64{
				"requested_cents": input.AmountCents,
				"available_cents": wallet.BalanceCents,
			})
	}

	before := wallet.BalanceCents
	after := before + signedAmount

	appendInput := ledger.AppendInput{
		AccountType:        enums.LedgerAccountWallet,
		AccountID:          input.UserID,
		Type:               input.Type,
		AmountCents:        signedAmount,
		BalanceBeforeCents: before,
		BalanceAfterCents:  after,
		OrderID:            input.OrderID,
		RefundID:           input.RefundID,
		Actor:              input.Actor,
		Metadata:           metadataWithDescription(input),
	}
	if input.Reference != "" {
		reference := input.Reference
		appendInput.Reference = &reference
	}

	appended, err := ledgerSvc.Append(ctx, appendInput)
	if err != nil {
		return nil, err
	}
	if appended.Replayed {
		// A concurrent caller won the reference race; their balance change
		// already stands, so this call must not apply another one.
		return &MutationResult{Transaction: appended.Entry, Wallet: wallet, Replayed: true}, nil
	}

	wallet.BalanceCents = after
	if err := repo.Save(ctx, wallet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wallet")
	}

	return &MutationResult{Transaction: appended.Entry, Wallet: wallet}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	wallet, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	if wallet == nil {
		return &models.Wallet{UserID: userID}, nil
	}
	return wallet, nil
}

func validateMutation(input MutationInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if err := input.Actor.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	return nil
}

func metadataWithDescription(input MutationInput) json.RawMessage {
	if input.Description == "" {
		return input.Metadata
	}
	merged := map[string]any{"description": input.Description}
	if len(input.Metadata) > 0 {
		var extra map[string]any
		if err := json.Unmarshal(input.Metadata, &extra); err == nil {
			for k, v := range extra {
				merged[k] = v
			}
		}
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return input.Metadata
	}
	return encoded
}
