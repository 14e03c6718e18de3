package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplyTransaction always points at exactly one purchase; the unique index on
// purchase_transaction_id keeps a purchase from being supplied twice.
type SupplyTransaction struct {
	ID                    uint                    `gorm:"primaryKey" json:"id"`
	PartyID               uint                    `gorm:"index;not null" json:"party_id"`
	Party                 *Party                  `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	PurchaseTransactionID uint                    `gorm:"uniqueIndex;not null" json:"purchase_transaction_id"`
	PurchaseTransaction   *PurchaseTransaction    `gorm:"foreignKey:PurchaseTransactionID" json:"purchase_transaction,omitempty"`
	IsBuilt               bool                    `gorm:"not null;default:false" json:"is_built"`
	Items                 []SupplyTransactionItem `gorm:"foreignKey:SupplyTransactionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt             time.Time               `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

// Voucher returns the purchase voucher the supply was made against.
func (s SupplyTransaction) Voucher() string {
	if s.PurchaseTransaction == nil || s.PurchaseTransaction.PurchaseVoucherNumber == "" {
		return "N/A"
	}
	return s.PurchaseTransaction.PurchaseVoucherNumber
}

type SupplyTransactionItem struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	SupplyTransactionID uint                `gorm:"index;not null" json:"supply_transaction_id"`
	ProductID           uint                `gorm:"index;not null" json:"product_id"`
	Product             *Product            `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WeightKg            decimal.Decimal     `gorm:"type:numeric(12,3);not null" json:"weight_kg"`
	PricePerKg          decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price_per_kg"`
	GSTPercent          decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"gst_percent"`
}
