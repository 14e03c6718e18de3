package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Date          time.Time       `gorm:"index;not null" json:"date"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	VoucherNumber string          `gorm:"size:50;not null" json:"voucher_number"`
	PayTo         string          `gorm:"size:200;not null" json:"pay_to"`
	ExpenseGrade  string          `gorm:"size:50" json:"expense_grade"`
	Description   string          `gorm:"size:255" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
