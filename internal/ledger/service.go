package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db"
	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
	"github.com/fekt2016/eaz-back-sub005/pkg/types"
)

// Service defines operations that record ledger entries.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Append(ctx context.Context, input AppendInput) (*AppendResult, error)
	FindByReference(ctx context.Context, reference string) (*models.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountType enums.LedgerAccountType, accountID uuid.UUID) ([]models.LedgerEntry, error)
}

// AppendInput captures the immutable data a ledger entry requires.
type AppendInput struct {
	AccountType        enums.LedgerAccountType
	AccountID          uuid.UUID
	Type               enums.LedgerEntryType
	AmountCents        int64
	BalanceBeforeCents int64
	BalanceAfterCents  int64
	Reference          *string
	OrderID            *uuid.UUID
	RefundID           *uuid.UUID
	Actor              types.Actor
	Metadata           json.RawMessage
}

// AppendResult returns the written (or replayed) entry. Replayed is true
// when a prior entry with the same reference already existed; callers treat
// that as idempotent success, never as an error.
type AppendResult struct {
	Entry    *models.LedgerEntry
	Replayed bool
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Append(ctx context.Context, input AppendInput) (*AppendResult, error) {
	if err := validateAppend(input); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		AccountType:        input.AccountType,
		AccountID:          input.AccountID,
		Type:               input.Type,
		AmountCents:        input.AmountCents,
		BalanceBeforeCents: input.BalanceBeforeCents,
		BalanceAfterCents:  input.BalanceAfterCents,
		Reference:          input.Reference,
		OrderID:            input.OrderID,
		RefundID:           input.RefundID,
		ActorType:          input.Actor.Type,
		Metadata:           input.Metadata,
	}
	if input.Actor.ID != uuid.Nil {
		actorID := input.Actor.ID
		entry.ActorID = &actorID
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if input.Reference != nil && db.IsUniqueViolation(err, "ux_ledger_reference") {
			existing, findErr := s.repo.FindByReference(ctx, *input.Reference)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load replayed ledger entry")
			}
			if existing != nil {
				return &AppendResult{Entry: existing, Replayed: true}, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return &AppendResult{Entry: entry}, nil
}

func (s *service) FindByReference(ctx context.Context, reference string) (*models.LedgerEntry, error) {
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference required")
	}
	return s.repo.FindByReference(ctx, reference)
}

func (s *service) ListByAccount(ctx context.Context, accountType enums.LedgerAccountType, accountID uuid.UUID) ([]models.LedgerEntry, error) {
	if !accountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger account type")
	}
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	return s.repo.ListByAccount(ctx, accountType, accountID)
}

func validateAppend(input AppendInput) error {
	if !input.AccountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger account type %q", input.AccountType))
	}
	if input.AccountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", input.Type))
	}
	if err := input.Actor.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	if input.Reference != nil && *input.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference must not be empty when set")
	}
	if input.BalanceAfterCents != input.BalanceBeforeCents+input.AmountCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "balance after must equal balance before plus amount")
	}
	return nil
}
