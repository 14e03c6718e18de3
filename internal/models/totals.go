package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmount is one transaction line: weight x price, plus GST when the
// transaction is built and the line carries a GST rate.
type LineAmount struct {
	Amount decimal.Decimal `json:"amount"`
	GST    decimal.Decimal `json:"gst"`
	Total  decimal.Decimal `json:"total"`
}

func ComputeLine(weight, price decimal.Decimal, gst decimal.NullDecimal, built bool) LineAmount {
	amount := weight.Mul(price)
	tax := decimal.Zero
	if built && gst.Valid {
		tax = amount.Mul(gst.Decimal).Div(hundred)
	}
	return LineAmount{Amount: amount, GST: tax, Total: amount.Add(tax)}
}

func (i PurchaseTransactionItem) Line(built bool) LineAmount {
	return ComputeLine(i.WeightKg, i.PricePerKg, i.GSTPercent, built)
}

func (i SupplyTransactionItem) Line(built bool) LineAmount {
	return ComputeLine(i.WeightKg, i.PricePerKg, i.GSTPercent, built)
}

// PurchaseTotal sums the lines of a purchase transaction.
func PurchaseTotal(tx PurchaseTransaction, items []PurchaseTransactionItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Line(tx.IsBuilt).Total)
	}
	return total
}

// SupplyTotal sums the lines of a supply transaction.
func SupplyTotal(tx SupplyTransaction, items []SupplyTransactionItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Line(tx.IsBuilt).Total)
	}
	return total
}
