package audit

import (
	"testing"
	"time"

	"ledger-backend/internal/models"
	"ledger-backend/internal/testutil"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedParty(t *testing.T, db *gorm.DB) models.Party {
	t.Helper()
	p := models.Party{Name: "Kumar Stores", Grade: models.GradeSupplyParty}
	assert.NoError(t, db.Create(&p).Error)
	return p
}

func TestUndoCreateDeletesRecord(t *testing.T) {
	db := testutil.DB(t)
	party := seedParty(t, db)

	r := models.Receipt{PartyID: party.ID, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("200"), ReceiptNumber: "R-1", Mode: models.ModeCash}
	assert.NoError(t, db.Create(&r).Error)
	assert.NoError(t, WriteLog(db, LogOptions{
		Scope: models.ScopeApp, EntityType: EntityReceipt, EntityID: r.ID,
		Action: models.AuditActionCreate, Description: "receipt R-1", After: r,
	}))

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry).Error)
	assert.NoError(t, UndoLog(db, entry.ID, models.ScopeAdmin))

	var count int64
	db.Model(&models.Receipt{}).Count(&count)
	assert.Equal(t, int64(0), count)

	assert.IsError(t, UndoLog(db, entry.ID, models.ScopeAdmin), ErrAlreadyUndone)

	var undo models.AuditLog
	assert.NoError(t, db.Where("action = ?", models.AuditActionUndo).First(&undo).Error)
	assert.Equal(t, models.ScopeAdmin, undo.Scope)
	assert.True(t, undo.IsUndoEntry)
}

func TestUndoDeleteRecreatesTransactionWithItems(t *testing.T) {
	db := testutil.DB(t)
	party := seedParty(t, db)
	product := models.Product{ProductName: "Onion"}
	assert.NoError(t, db.Create(&product).Error)

	pt := models.PurchaseTransaction{
		PartyID: party.ID, PurchaseVoucherNumber: "PV-9",
		Items: []models.PurchaseTransactionItem{
			{ProductID: product.ID, WeightKg: decimal.RequireFromString("12.5"), PricePerKg: decimal.RequireFromString("30")},
		},
	}
	assert.NoError(t, db.Create(&pt).Error)

	var loaded models.PurchaseTransaction
	assert.NoError(t, db.Preload("Items").First(&loaded, pt.ID).Error)
	assert.NoError(t, db.Select("Items").Delete(&loaded).Error)
	assert.NoError(t, WriteLog(db, LogOptions{
		EntityType: EntityPurchaseTransaction, EntityID: pt.ID,
		Action: models.AuditActionDelete, Description: "purchase PV-9", Before: loaded,
	}))

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry).Error)
	assert.NoError(t, UndoLog(db, entry.ID, models.ScopeAdmin))

	var back models.PurchaseTransaction
	assert.NoError(t, db.Preload("Items").First(&back, pt.ID).Error)
	assert.Equal(t, "PV-9", back.PurchaseVoucherNumber)
	assert.Equal(t, 1, len(back.Items))
	assert.True(t, decimal.RequireFromString("12.5").Equal(back.Items[0].WeightKg))
}

func TestUndoPriceUpdate(t *testing.T) {
	db := testutil.DB(t)
	party := seedParty(t, db)
	product := models.Product{ProductName: "Onion"}
	assert.NoError(t, db.Create(&product).Error)

	price := models.SupplyPrice{PartyID: party.ID, ProductID: product.ID, PricePerKg: decimal.RequireFromString("40")}
	assert.NoError(t, db.Create(&price).Error)
	before := price
	assert.NoError(t, db.Model(&price).Update("price_per_kg", decimal.RequireFromString("45")).Error)
	assert.NoError(t, WriteLog(db, LogOptions{
		EntityType: EntitySupplyPrice, EntityID: price.ID, Action: models.AuditActionUpdate,
		Before: before, After: price,
	}))

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry).Error)
	assert.NoError(t, UndoLog(db, entry.ID, models.ScopePrice))

	var got models.SupplyPrice
	assert.NoError(t, db.First(&got, price.ID).Error)
	assert.True(t, decimal.RequireFromString("40").Equal(got.PricePerKg))
}

func TestUndoUnknownLog(t *testing.T) {
	db := testutil.DB(t)
	assert.IsError(t, UndoLog(db, 99, models.ScopeAdmin), gorm.ErrRecordNotFound)
}
