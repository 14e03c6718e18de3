package daybook

import (
	"context"
	"time"

	"ledger-backend/internal/models"
)

// Period is the half-open interval [From, To). A zero From is unbounded.
type Period struct {
	From time.Time
	To   time.Time
}

// Before is the period of everything strictly before t.
func Before(t time.Time) Period { return Period{To: t} }

// Source is the read side the daybook is computed from. Every list is
// ordered ascending: purchases and supplies by created_at, cash records by
// date, ties broken by id.
type Source interface {
	// Purchases returns purchases created within p with Party loaded.
	Purchases(ctx context.Context, p Period) ([]models.PurchaseTransaction, error)
	PurchaseItems(ctx context.Context, purchaseIDs []uint) ([]models.PurchaseTransactionItem, error)
	// Supplies returns supplies created within p with Party and
	// PurchaseTransaction loaded.
	Supplies(ctx context.Context, p Period) ([]models.SupplyTransaction, error)
	SupplyItems(ctx context.Context, supplyIDs []uint) ([]models.SupplyTransactionItem, error)
	Receipts(ctx context.Context, p Period) ([]models.Receipt, error)
	Payments(ctx context.Context, p Period) ([]models.Payment, error)
	Expenses(ctx context.Context, p Period) ([]models.Expense, error)
}
