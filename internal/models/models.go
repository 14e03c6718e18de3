package models

// All lists every table in migration order; parents before children.
func All() []any {
	return []any{
		&AppConfig{},
		&Party{},
		&Product{},
		&PurchasePrice{},
		&SupplyPrice{},
		&PriceHistory{},
		&PurchaseTransaction{},
		&PurchaseTransactionItem{},
		&SupplyTransaction{},
		&SupplyTransactionItem{},
		&Receipt{},
		&Payment{},
		&Expense{},
		&AuditLog{},
	}
}
