package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	ProductName  string              `gorm:"size:200;not null" json:"product_name"`
	ProductGrade string              `gorm:"size:50" json:"product_grade"`
	GSTSlab      decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"gst_slab"` // percent, e.g. 5, 12, 18
	Confirmed    bool                `gorm:"default:true" json:"confirmed"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
