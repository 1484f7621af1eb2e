package sellers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fekt2016/eaz-back-sub005/pkg/db/models"
	pkgerrors "github.com/fekt2016/eaz-back-sub005/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:sellers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.SellerBalance{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("seller service: %v", err)
	}
	return svc
}

func TestAddEarnings(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()

	balance, err := svc.AddEarnings(ctx, sellerID, 9900)
	if err != nil {
		t.Fatalf("add earnings: %v", err)
	}
	if balance.BalanceCents != 9900 || balance.WithdrawableCents != 9900 {
		t.Fatalf("unexpected balance: %+v", balance)
	}

	balance, err = svc.AddEarnings(ctx, sellerID, 100)
	if err != nil {
		t.Fatalf("add earnings again: %v", err)
	}
	if balance.BalanceCents != 10000 {
		t.Fatalf("expected 10000, got %d", balance.BalanceCents)
	}

	if _, err := svc.AddEarnings(ctx, sellerID, 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero earnings, got %v", err)
	}
}

func TestDebitFullCover(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()

	if _, err := svc.AddEarnings(ctx, sellerID, 10000); err != nil {
		t.Fatalf("seed earnings: %v", err)
	}

	result, err := svc.Debit(ctx, sellerID, 6000)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if result.RemovedCents != 6000 || result.ShortfallCents != 0 {
		t.Fatalf("unexpected debit result: %+v", result)
	}
	if result.Balance.BalanceCents != 4000 || result.Balance.NegativeCents != 0 {
		t.Fatalf("unexpected balance after debit: %+v", result.Balance)
	}
}

func TestDebitClampsAtZero(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()

	if _, err := svc.AddEarnings(ctx, sellerID, 4000); err != nil {
		t.Fatalf("seed earnings: %v", err)
	}

	// Owes 6000 but holds 4000: remove 4000, track 2000 deficit.
	result, err := svc.Debit(ctx, sellerID, 6000)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if result.RemovedCents != 4000 {
		t.Fatalf("expected removed 4000, got %d", result.RemovedCents)
	}
	if result.ShortfallCents != 2000 {
		t.Fatalf("expected shortfall 2000, got %d", result.ShortfallCents)
	}
	if result.Balance.BalanceCents != 0 {
		t.Fatalf("balance must clamp at zero, got %d", result.Balance.BalanceCents)
	}
	if result.Balance.NegativeCents != 2000 {
		t.Fatalf("expected deficit 2000, got %d", result.Balance.NegativeCents)
	}
	if result.Balance.WithdrawableCents != 0 {
		t.Fatalf("withdrawable must be zero, got %d", result.Balance.WithdrawableCents)
	}
}

func TestDebitUnknownSellerTracksFullDeficit(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.Debit(ctx, uuid.New(), 500)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if result.RemovedCents != 0 || result.ShortfallCents != 500 {
		t.Fatalf("unexpected debit result: %+v", result)
	}
	if result.Balance.NegativeCents != 500 {
		t.Fatalf("expected deficit 500, got %d", result.Balance.NegativeCents)
	}
}

func TestReleasePending(t *testing.T) {
	t.Parallel()

	dsn := "file:sellers_pending_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.SellerBalance{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("seller service: %v", err)
	}

	ctx := context.Background()
	sellerID := uuid.New()

	balance, err := repo.GetOrCreate(ctx, sellerID)
	if err != nil {
		t.Fatalf("seed balance: %v", err)
	}
	balance.PendingCents = 3000
	if err := repo.Save(ctx, balance); err != nil {
		t.Fatalf("save seed: %v", err)
	}

	balance, err = svc.ReleasePending(ctx, sellerID, 1000)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if balance.PendingCents != 2000 || balance.BalanceCents != 1000 {
		t.Fatalf("unexpected balance after release: %+v", balance)
	}
	if balance.WithdrawableCents != 1000 {
		t.Fatalf("withdrawable should track spendable balance, got %d", balance.WithdrawableCents)
	}

	// Over-release is capped at what is actually pending.
	balance, err = svc.ReleasePending(ctx, sellerID, 5000)
	if err != nil {
		t.Fatalf("release remainder: %v", err)
	}
	if balance.PendingCents != 0 || balance.BalanceCents != 3000 {
		t.Fatalf("expected full release, got %+v", balance)
	}

	if _, err := svc.ReleasePending(ctx, sellerID, 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero release, got %v", err)
	}
}
