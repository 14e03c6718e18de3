package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	ModeCash   PaymentMode = "cash"
	ModeBank   PaymentMode = "bank"
	ModeUPI    PaymentMode = "upi"
	ModeCheque PaymentMode = "cheque"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeBank, ModeUPI, ModeCheque:
		return true
	}
	return false
}

// Receipt - money received from a supply party
type Receipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PartyID       uint            `gorm:"index;not null" json:"party_id"`
	Party         *Party          `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Date          time.Time       `gorm:"index;not null" json:"date"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	ReceiptNumber string          `gorm:"size:50;not null" json:"receipt_number"`
	Mode          PaymentMode     `gorm:"size:20;not null" json:"mode"`
	Description   string          `gorm:"size:255" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Payment - money paid to a purchase party
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PartyID     uint            `gorm:"index;not null" json:"party_id"`
	Party       *Party          `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	PaidAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"paid_amount"`
	Mode        PaymentMode     `gorm:"size:20;not null" json:"mode"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
