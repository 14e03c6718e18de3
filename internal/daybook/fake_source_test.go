package daybook

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// fakeSource is an in-memory Source. Setting fail makes the named list fail;
// delay makes every read wait (respecting ctx) before answering.
type fakeSource struct {
	mu            sync.Mutex
	purchases     []models.PurchaseTransaction
	purchaseItems []models.PurchaseTransactionItem
	supplies      []models.SupplyTransaction
	supplyItems   []models.SupplyTransactionItem
	receipts      []models.Receipt
	payments      []models.Payment
	expenses      []models.Expense

	fail  string
	delay time.Duration
	calls []string
}

func in(p Period, t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	return p.To.IsZero() || t.Before(p.To)
}

func (f *fakeSource) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.fail == name {
		return errBoom
	}
	return nil
}

func (f *fakeSource) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, name)
}

func (f *fakeSource) Purchases(ctx context.Context, p Period) ([]models.PurchaseTransaction, error) {
	if err := f.enter(ctx, "purchases"); err != nil {
		return nil, err
	}
	var out []models.PurchaseTransaction
	for _, pt := range f.purchases {
		if in(p, pt.CreatedAt) {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (f *fakeSource) PurchaseItems(ctx context.Context, ids []uint) ([]models.PurchaseTransactionItem, error) {
	if err := f.enter(ctx, "purchase items"); err != nil {
		return nil, err
	}
	var out []models.PurchaseTransactionItem
	for _, it := range f.purchaseItems {
		if slices.Contains(ids, it.PurchaseTransactionID) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSource) Supplies(ctx context.Context, p Period) ([]models.SupplyTransaction, error) {
	if err := f.enter(ctx, "supplies"); err != nil {
		return nil, err
	}
	var out []models.SupplyTransaction
	for _, st := range f.supplies {
		if in(p, st.CreatedAt) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeSource) SupplyItems(ctx context.Context, ids []uint) ([]models.SupplyTransactionItem, error) {
	if err := f.enter(ctx, "supply items"); err != nil {
		return nil, err
	}
	var out []models.SupplyTransactionItem
	for _, it := range f.supplyItems {
		if slices.Contains(ids, it.SupplyTransactionID) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSource) Receipts(ctx context.Context, p Period) ([]models.Receipt, error) {
	if err := f.enter(ctx, "receipts"); err != nil {
		return nil, err
	}
	var out []models.Receipt
	for _, r := range f.receipts {
		if in(p, r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Payments(ctx context.Context, p Period) ([]models.Payment, error) {
	if err := f.enter(ctx, "payments"); err != nil {
		return nil, err
	}
	var out []models.Payment
	for _, pm := range f.payments {
		if in(p, pm.Date) {
			out = append(out, pm)
		}
	}
	return out, nil
}

func (f *fakeSource) Expenses(ctx context.Context, p Period) ([]models.Expense, error) {
	if err := f.enter(ctx, "expenses"); err != nil {
		return nil, err
	}
	var out []models.Expense
	for _, ex := range f.expenses {
		if in(p, ex.Date) {
			out = append(out, ex)
		}
	}
	return out, nil
}

// builders

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string, hour int) time.Time { return day(s).Add(time.Duration(hour) * time.Hour) }

func (f *fakeSource) addPurchase(id uint, party, voucher string, created time.Time, built bool, lines ...models.PurchaseTransactionItem) {
	f.purchases = append(f.purchases, models.PurchaseTransaction{
		ID: id, Party: &models.Party{Name: party}, PurchaseVoucherNumber: voucher, IsBuilt: built, CreatedAt: created,
	})
	for _, l := range lines {
		l.PurchaseTransactionID = id
		f.purchaseItems = append(f.purchaseItems, l)
	}
}

func (f *fakeSource) addSupply(id uint, party, purchaseVoucher string, created time.Time, built bool, lines ...models.SupplyTransactionItem) {
	f.supplies = append(f.supplies, models.SupplyTransaction{
		ID: id, Party: &models.Party{Name: party}, IsBuilt: built, CreatedAt: created,
		PurchaseTransaction: &models.PurchaseTransaction{PurchaseVoucherNumber: purchaseVoucher},
	})
	for _, l := range lines {
		l.SupplyTransactionID = id
		f.supplyItems = append(f.supplyItems, l)
	}
}

func pline(weight, price string) models.PurchaseTransactionItem {
	return models.PurchaseTransactionItem{WeightKg: dec(weight), PricePerKg: dec(price)}
}

func sline(weight, price string) models.SupplyTransactionItem {
	return models.SupplyTransactionItem{WeightKg: dec(weight), PricePerKg: dec(price)}
}

func (f *fakeSource) addReceipt(date, amount, number string) {
	f.receipts = append(f.receipts, models.Receipt{
		ID: uint(len(f.receipts) + 1), Party: &models.Party{Name: "Buyer"}, Date: day(date), Amount: dec(amount), ReceiptNumber: number,
	})
}

func (f *fakeSource) addPayment(date, amount string) {
	f.payments = append(f.payments, models.Payment{
		ID: uint(len(f.payments) + 1), Party: &models.Party{Name: "Seller"}, Date: day(date), PaidAmount: dec(amount), Mode: models.ModeCash,
	})
}

func (f *fakeSource) addExpense(date, amount, voucher string) {
	f.expenses = append(f.expenses, models.Expense{
		ID: uint(len(f.expenses) + 1), Date: day(date), Amount: dec(amount), VoucherNumber: voucher, PayTo: "Electricity",
	})
}
