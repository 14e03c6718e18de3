package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseTransaction struct {
	ID                    uint                      `gorm:"primaryKey" json:"id"`
	PartyID               uint                      `gorm:"index;not null" json:"party_id"`
	Party                 *Party                    `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	PurchaseVoucherNumber string                    `gorm:"size:50;not null" json:"purchase_voucher_number"`
	VehicleNumber         string                    `gorm:"size:30" json:"vehicle_number"`
	IsBuilt               bool                      `gorm:"not null;default:false" json:"is_built"` // GST applies to items
	Items                 []PurchaseTransactionItem `gorm:"foreignKey:PurchaseTransactionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt             time.Time                 `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time                 `json:"updated_at"`
}

type PurchaseTransactionItem struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	PurchaseTransactionID uint                `gorm:"index;not null" json:"purchase_transaction_id"`
	ProductID             uint                `gorm:"index;not null" json:"product_id"`
	Product               *Product            `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WeightKg              decimal.Decimal     `gorm:"type:numeric(12,3);not null" json:"weight_kg"`
	PricePerKg            decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price_per_kg"`
	GSTPercent            decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"gst_percent"`
}
