package models

import "time"

type PartyGrade string

const (
	GradePurchaseParty PartyGrade = "purchase_party" // we buy from them
	GradeSupplyParty   PartyGrade = "supply_party"   // they buy from us
)

type Party struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	MobileNumber string     `gorm:"size:20" json:"mobile_number"`
	City         string     `gorm:"size:100" json:"city"`
	Grade        PartyGrade `gorm:"size:20;not null;index" json:"grade"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PartyName returns the display name, falling back to "Unknown" when the
// party was not loaded or has been removed.
func PartyName(p *Party) string {
	if p == nil || p.Name == "" {
		return "Unknown"
	}
	return p.Name
}
