package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceKind string

const (
	PriceKindPurchase PriceKind = "purchase"
	PriceKindSupply   PriceKind = "supply"
)

// PurchasePrice - what we pay a purchase party per kg of a product
type PurchasePrice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PartyID    uint            `gorm:"uniqueIndex:idx_purchase_price_pair;not null" json:"party_id"`
	Party      Party           `gorm:"foreignKey:PartyID" json:"-"`
	ProductID  uint            `gorm:"uniqueIndex:idx_purchase_price_pair;not null" json:"product_id"`
	Product    Product         `gorm:"foreignKey:ProductID" json:"-"`
	PricePerKg decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_kg"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SupplyPrice - what a supply party pays us per kg of a product
type SupplyPrice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PartyID    uint            `gorm:"uniqueIndex:idx_supply_price_pair;not null" json:"party_id"`
	Party      Party           `gorm:"foreignKey:PartyID" json:"-"`
	ProductID  uint            `gorm:"uniqueIndex:idx_supply_price_pair;not null" json:"product_id"`
	Product    Product         `gorm:"foreignKey:ProductID" json:"-"`
	PricePerKg decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_kg"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PriceHistory keeps every price change for both price masters.
type PriceHistory struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	Kind       PriceKind           `gorm:"size:20;not null;index" json:"kind"`
	PartyID    uint                `gorm:"index;not null" json:"party_id"`
	ProductID  uint                `gorm:"index;not null" json:"product_id"`
	OldPrice   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"old_price"`
	NewPrice   decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"new_price"`
	ChangedAt  time.Time           `gorm:"index;not null" json:"changed_at"`
}
