package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionUndo   AuditAction = "undo"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Session scope that performed the change
	Scope PinScope `gorm:"size:20" json:"scope"`

	// e.g. "receipt", "payment", "expense", "purchase_transaction", "supply_transaction", "purchase_price"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// JSON snapshots
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`

	// Set when this row was written by an undo
	IsUndoEntry bool `json:"is_undo_entry"`

	IsUndone bool       `gorm:"default:false" json:"is_undone"`
	UndoneAt *time.Time `json:"undone_at"`
}
