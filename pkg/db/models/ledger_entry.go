package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// LedgerEntry is an immutable record of a balance-changing event. The
// unique Reference backs idempotent replay: at most one entry may exist per
// non-null reference.
type LedgerEntry struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	AccountType        enums.LedgerAccountType `gorm:"column:account_type;type:text;not null;index:ix_ledger_account"`
	AccountID          uuid.UUID               `gorm:"column:account_id;type:uuid;not null;index:ix_ledger_account"`
	Type               enums.LedgerEntryType   `gorm:"column:type;type:text;not null"`
	AmountCents        int64                   `gorm:"column:amount_cents;not null"`
	BalanceBeforeCents int64                   `gorm:"column:balance_before_cents;not null"`
	BalanceAfterCents  int64                   `gorm:"column:balance_after_cents;not null"`
	Reference          *string                 `gorm:"column:reference;uniqueIndex:ux_ledger_reference"`
	OrderID            *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	RefundID           *uuid.UUID              `gorm:"column:refund_id;type:uuid"`
	ActorType          enums.ActorType         `gorm:"column:actor_type;type:text;not null"`
	ActorID            *uuid.UUID              `gorm:"column:actor_id;type:uuid"`
	Metadata           json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
