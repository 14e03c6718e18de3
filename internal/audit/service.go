package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity types recorded in the audit log.
const (
	EntityReceipt             = "receipt"
	EntityPayment             = "payment"
	EntityExpense             = "expense"
	EntityPurchaseTransaction = "purchase_transaction"
	EntitySupplyTransaction   = "supply_transaction"
	EntityPurchasePrice       = "purchase_price"
	EntitySupplyPrice         = "supply_price"
)

var ErrAlreadyUndone = errors.New("this change was already undone")

type LogOptions struct {
	Scope       models.PinScope
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func snapshot(v any) string {
	// jsonb needs valid JSON, so an absent side is stored as null
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// WriteLog records one change. Pass the transaction the change ran in so the
// log row commits or rolls back with it.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	row := models.AuditLog{
		Scope:       opts.Scope,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// UndoLog reverts the change recorded by log logID: a create is deleted, a
// delete is recreated from its snapshot and an update is restored to its
// before state. The log is marked undone and an undo row is written.
func UndoLog(db *gorm.DB, logID uint, scope models.PinScope) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, "id = ?", logID).Error; err != nil {
			return fmt.Errorf("audit log %d: %w", logID, err)
		}
		if entry.IsUndone {
			return ErrAlreadyUndone
		}

		var err error
		switch entry.Action {
		case models.AuditActionCreate:
			err = deleteEntity(tx, entry.EntityType, entry.EntityID)
		case models.AuditActionDelete:
			err = recreateEntity(tx, entry.EntityType, entry.BeforeData)
		case models.AuditActionUpdate:
			err = restoreEntity(tx, entry.EntityType, entry.EntityID, entry.BeforeData)
		default:
			return fmt.Errorf("%s entries cannot be undone", entry.Action)
		}
		if err != nil {
			return fmt.Errorf("undo %s %d: %w", entry.EntityType, entry.EntityID, err)
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		undo := models.AuditLog{
			Scope:       scope,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: "Undone: " + entry.Description,
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			IsUndoEntry: true,
		}
		return tx.Create(&undo).Error
	})
}

func deleteEntity(tx *gorm.DB, entityType string, id uint) error {
	var model any
	switch entityType {
	case EntityReceipt:
		model = &models.Receipt{}
	case EntityPayment:
		model = &models.Payment{}
	case EntityExpense:
		model = &models.Expense{}
	case EntityPurchaseTransaction:
		model = &models.PurchaseTransaction{}
	case EntitySupplyTransaction:
		model = &models.SupplyTransaction{}
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
	res := tx.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// recreateEntity inserts a deleted row again under its old id so that rows
// pointing at it stay valid.
func recreateEntity(tx *gorm.DB, entityType, data string) error {
	switch entityType {
	case EntityReceipt:
		var r models.Receipt
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return err
		}
		r.Party = nil
		return tx.Omit(clause.Associations).Create(&r).Error

	case EntityPayment:
		var p models.Payment
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		p.Party = nil
		return tx.Omit(clause.Associations).Create(&p).Error

	case EntityExpense:
		var e models.Expense
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return err
		}
		return tx.Create(&e).Error

	case EntityPurchaseTransaction:
		var pt models.PurchaseTransaction
		if err := json.Unmarshal([]byte(data), &pt); err != nil {
			return err
		}
		pt.Party = nil
		for i := range pt.Items {
			pt.Items[i].Product = nil
		}
		return tx.Omit("Party").Create(&pt).Error

	case EntitySupplyTransaction:
		var st models.SupplyTransaction
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return err
		}
		st.Party = nil
		st.PurchaseTransaction = nil
		for i := range st.Items {
			st.Items[i].Product = nil
		}
		return tx.Omit("Party", "PurchaseTransaction").Create(&st).Error

	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}

func restoreEntity(tx *gorm.DB, entityType string, id uint, data string) error {
	switch entityType {
	case EntityPurchasePrice, EntitySupplyPrice:
		var before struct {
			PricePerKg decimal.NullDecimal `json:"price_per_kg"`
		}
		if err := json.Unmarshal([]byte(data), &before); err != nil {
			return err
		}
		var model any = &models.PurchasePrice{}
		if entityType == EntitySupplyPrice {
			model = &models.SupplyPrice{}
		}
		// the price did not exist before the change
		if !before.PricePerKg.Valid {
			return tx.Delete(model, "id = ?", id).Error
		}
		return tx.Model(model).Where("id = ?", id).Update("price_per_kg", before.PricePerKg.Decimal).Error

	default:
		return fmt.Errorf("%s changes cannot be restored", entityType)
	}
}
