// Package report builds the per-party statement: transactions and cash
// records of one party with a running balance.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LineType string

const (
	Credit LineType = "credit"
	Debit  LineType = "debit"
)

type ItemLine struct {
	ProductName string          `json:"product_name"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	models.LineAmount
}

type Line struct {
	Date          time.Time       `json:"date"`
	Type          LineType        `json:"type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Voucher       string          `json:"voucher"`
	TransactionID uint            `json:"transaction_id,omitempty"`
	Items         []ItemLine      `json:"items,omitempty"`
	Balance       decimal.Decimal `json:"balance"` // running, after this line
}

type PartyReport struct {
	Party       models.Party    `json:"party"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Lines       []Line          `json:"lines"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Balance     decimal.Decimal `json:"balance"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Party builds the statement of a party over [from, to). Zero bounds are
// open. For a purchase party purchases are credits and payments debits; for
// a supply party supplies are debits and receipts credits.
func (s *Service) Party(ctx context.Context, partyID uint, from, to time.Time) (*PartyReport, error) {
	db := s.db.WithContext(ctx)

	var party models.Party
	if err := db.First(&party, partyID).Error; err != nil {
		return nil, err
	}

	var lines []Line
	var err error
	switch party.Grade {
	case models.GradePurchaseParty:
		lines, err = purchaseLines(db, party.ID, from, to)
	case models.GradeSupplyParty:
		lines, err = supplyLines(db, party.ID, from, to)
	default:
		return nil, fmt.Errorf("party %d has unknown grade %q", party.ID, party.Grade)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Date.Before(lines[j].Date) })

	rep := &PartyReport{
		Party: party, From: from, To: to, Lines: lines,
		TotalCredit: decimal.Zero, TotalDebit: decimal.Zero, Balance: decimal.Zero,
	}
	for i := range rep.Lines {
		l := &rep.Lines[i]
		if l.Type == Credit {
			rep.TotalCredit = rep.TotalCredit.Add(l.Amount)
			rep.Balance = rep.Balance.Add(l.Amount)
		} else {
			rep.TotalDebit = rep.TotalDebit.Add(l.Amount)
			rep.Balance = rep.Balance.Sub(l.Amount)
		}
		l.Balance = rep.Balance
	}
	return rep, nil
}

func window(q *gorm.DB, column string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(column+" >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where(column+" < ?", to.UTC())
	}
	return q
}

func itemLines[T any](items []T, line func(T) ItemLine) ([]ItemLine, decimal.Decimal) {
	out := make([]ItemLine, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		l := line(it)
		out = append(out, l)
		total = total.Add(l.Total)
	}
	return out, total
}

func productName(p *models.Product) string {
	if p == nil {
		return "N/A"
	}
	return p.ProductName
}

func describeCash(mode models.PaymentMode, description string) string {
	if description == "" {
		return string(mode)
	}
	return string(mode) + ": " + description
}

func purchaseLines(db *gorm.DB, partyID uint, from, to time.Time) ([]Line, error) {
	var purchases []models.PurchaseTransaction
	if err := window(db.Where("party_id = ?", partyID), "created_at", from, to).
		Preload("Items.Product").Order("created_at asc, id asc").Find(&purchases).Error; err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := window(db.Where("party_id = ?", partyID), "date", from, to).
		Order("date asc, id asc").Find(&payments).Error; err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(purchases)+len(payments))
	for _, pt := range purchases {
		items, total := itemLines(pt.Items, func(it models.PurchaseTransactionItem) ItemLine {
			return ItemLine{productName(it.Product), it.WeightKg, it.PricePerKg, it.Line(pt.IsBuilt)}
		})
		if !total.IsPositive() {
			continue
		}
		lines = append(lines, Line{
			Date: pt.CreatedAt, Type: Credit,
			Description:   fmt.Sprintf("Purchase (Voucher: %s)", pt.PurchaseVoucherNumber),
			Amount:        total,
			Voucher:       pt.PurchaseVoucherNumber,
			TransactionID: pt.ID,
			Items:         items,
		})
	}
	for _, p := range payments {
		lines = append(lines, Line{
			Date: p.Date, Type: Debit,
			Description: "Payment - " + describeCash(p.Mode, p.Description),
			Amount:      p.PaidAmount,
			Voucher:     "-",
		})
	}
	return lines, nil
}

func supplyLines(db *gorm.DB, partyID uint, from, to time.Time) ([]Line, error) {
	var supplies []models.SupplyTransaction
	if err := window(db.Where("party_id = ?", partyID), "created_at", from, to).
		Preload("PurchaseTransaction").Preload("Items.Product").
		Order("created_at asc, id asc").Find(&supplies).Error; err != nil {
		return nil, err
	}
	var receipts []models.Receipt
	if err := window(db.Where("party_id = ?", partyID), "date", from, to).
		Order("date asc, id asc").Find(&receipts).Error; err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(supplies)+len(receipts))
	for _, st := range supplies {
		items, total := itemLines(st.Items, func(it models.SupplyTransactionItem) ItemLine {
			return ItemLine{productName(it.Product), it.WeightKg, it.PricePerKg, it.Line(st.IsBuilt)}
		})
		if !total.IsPositive() {
			continue
		}
		lines = append(lines, Line{
			Date: st.CreatedAt, Type: Debit,
			Description:   fmt.Sprintf("Supply (Voucher: %s)", st.Voucher()),
			Amount:        total,
			Voucher:       st.Voucher(),
			TransactionID: st.ID,
			Items:         items,
		})
	}
	for _, r := range receipts {
		lines = append(lines, Line{
			Date: r.Date, Type: Credit,
			Description: fmt.Sprintf("Receipt - %s (Receipt: %s)", describeCash(r.Mode, r.Description), r.ReceiptNumber),
			Amount:      r.Amount,
			Voucher:     r.ReceiptNumber,
		})
	}
	return lines, nil
}
