package models

import "time"

type PinScope string

const (
	ScopeApp   PinScope = "app"   // opening the ledger
	ScopeAdmin PinScope = "admin" // deletes
	ScopePrice PinScope = "price" // price master edits
)

// AppConfig holds one bcrypt PIN hash per scope.
type AppConfig struct {
	ID        uint     `gorm:"primaryKey"`
	Scope     PinScope `gorm:"size:20;uniqueIndex;not null"`
	PinHash   string   `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
