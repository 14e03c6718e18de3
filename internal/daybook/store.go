package daybook

import (
	"context"

	"ledger-backend/internal/models"

	"gorm.io/gorm"
)

// Store is the gorm backed Source.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// within filters column to p. Stored times are UTC, so are the bounds.
func within(q *gorm.DB, column string, p Period) *gorm.DB {
	if !p.From.IsZero() {
		q = q.Where(column+" >= ?", p.From.UTC())
	}
	if !p.To.IsZero() {
		q = q.Where(column+" < ?", p.To.UTC())
	}
	return q
}

func (s *Store) Purchases(ctx context.Context, p Period) ([]models.PurchaseTransaction, error) {
	var out []models.PurchaseTransaction
	err := within(s.db.WithContext(ctx), "created_at", p).
		Preload("Party").
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) PurchaseItems(ctx context.Context, purchaseIDs []uint) ([]models.PurchaseTransactionItem, error) {
	var out []models.PurchaseTransactionItem
	if len(purchaseIDs) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("purchase_transaction_id IN ?", purchaseIDs).
		Order("id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) Supplies(ctx context.Context, p Period) ([]models.SupplyTransaction, error) {
	var out []models.SupplyTransaction
	err := within(s.db.WithContext(ctx), "created_at", p).
		Preload("Party").
		Preload("PurchaseTransaction").
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) SupplyItems(ctx context.Context, supplyIDs []uint) ([]models.SupplyTransactionItem, error) {
	var out []models.SupplyTransactionItem
	if len(supplyIDs) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("supply_transaction_id IN ?", supplyIDs).
		Order("id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) Receipts(ctx context.Context, p Period) ([]models.Receipt, error) {
	var out []models.Receipt
	err := within(s.db.WithContext(ctx), "date", p).
		Preload("Party").
		Order("date asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) Payments(ctx context.Context, p Period) ([]models.Payment, error) {
	var out []models.Payment
	err := within(s.db.WithContext(ctx), "date", p).
		Preload("Party").
		Order("date asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) Expenses(ctx context.Context, p Period) ([]models.Expense, error) {
	var out []models.Expense
	err := within(s.db.WithContext(ctx), "date", p).
		Order("date asc, id asc").
		Find(&out).Error
	return out, err
}
