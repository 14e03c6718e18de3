package master

import (
	"errors"
	"fmt"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceRow is a row of either price master; both share the same columns.
type PriceRow struct {
	ID         uint            `json:"id"`
	PartyID    uint            `json:"party_id"`
	ProductID  uint            `json:"product_id"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var ErrGradeMismatch = errors.New("party grade does not match price kind")

func priceTable(kind models.PriceKind) (string, error) {
	switch kind {
	case models.PriceKindPurchase:
		return "purchase_prices", nil
	case models.PriceKindSupply:
		return "supply_prices", nil
	}
	return "", fmt.Errorf("unknown price kind %q", kind)
}

func gradeFor(kind models.PriceKind) models.PartyGrade {
	if kind == models.PriceKindPurchase {
		return models.GradePurchaseParty
	}
	return models.GradeSupplyParty
}

// LookupPrice returns the price per kg a party has for a product.
func LookupPrice(db *gorm.DB, kind models.PriceKind, partyID, productID uint) (decimal.Decimal, bool, error) {
	table, err := priceTable(kind)
	if err != nil {
		return decimal.Zero, false, err
	}
	var row PriceRow
	err = db.Table(table).Where("party_id = ? AND product_id = ?", partyID, productID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return row.PricePerKg, true, nil
}

// SetPrice creates or changes the price of a (party, product) pair, records
// the change in the price history and the audit log.
func SetPrice(db *gorm.DB, kind models.PriceKind, partyID, productID uint, price decimal.Decimal, scope models.PinScope) (PriceRow, error) {
	table, err := priceTable(kind)
	if err != nil {
		return PriceRow{}, err
	}
	if !price.IsPositive() {
		return PriceRow{}, fmt.Errorf("price_per_kg must be greater than 0")
	}

	var row PriceRow
	err = db.Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.First(&party, partyID).Error; err != nil {
			return fmt.Errorf("party %d: %w", partyID, err)
		}
		if party.Grade != gradeFor(kind) {
			return ErrGradeMismatch
		}
		if err := tx.First(&models.Product{}, productID).Error; err != nil {
			return fmt.Errorf("product %d: %w", productID, err)
		}

		var before *PriceRow
		old := decimal.NullDecimal{}
		err := tx.Table(table).Where("party_id = ? AND product_id = ?", partyID, productID).Take(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = PriceRow{PartyID: partyID, ProductID: productID, PricePerKg: price}
			if err := tx.Table(table).Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			prev := row
			before = &prev
			old = decimal.NewNullDecimal(row.PricePerKg)
			if row.PricePerKg.Equal(price) {
				return nil
			}
			row.PricePerKg = price
			row.UpdatedAt = time.Now()
			if err := tx.Table(table).Where("id = ?", row.ID).
				Updates(map[string]any{"price_per_kg": price, "updated_at": row.UpdatedAt}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&models.PriceHistory{
			Kind: kind, PartyID: partyID, ProductID: productID,
			OldPrice: old, NewPrice: price, ChangedAt: time.Now(),
		}).Error; err != nil {
			return err
		}

		entity := audit.EntityPurchasePrice
		if kind == models.PriceKindSupply {
			entity = audit.EntitySupplyPrice
		}
		var beforeSnap any
		if before != nil {
			beforeSnap = before
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       scope,
			EntityType:  entity,
			EntityID:    row.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s price of product %d for %s set to %s", kind, productID, party.Name, price.StringFixed(2)),
			Before:      beforeSnap,
			After:       row,
		})
	})
	return row, err
}

type SetPriceRequest struct {
	PartyID    uint            `json:"party_id"`
	ProductID  uint            `json:"product_id"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
}

func kindParam(c *fiber.Ctx) (models.PriceKind, error) {
	kind := models.PriceKind(c.Params("kind"))
	if _, err := priceTable(kind); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "kind must be purchase or supply")
	}
	return kind, nil
}

// GET /api/prices/:kind?party_id=1
func ListPricesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := kindParam(c)
		if err != nil {
			return err
		}
		table, _ := priceTable(kind)

		dbq := database.DB.Table(table)
		if pid := c.QueryInt("party_id"); pid > 0 {
			dbq = dbq.Where("party_id = ?", pid)
		}
		if pid := c.QueryInt("product_id"); pid > 0 {
			dbq = dbq.Where("product_id = ?", pid)
		}

		var rows []PriceRow
		if err := dbq.Order("party_id asc, product_id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list prices")
		}
		return c.JSON(rows)
	}
}

// PUT /api/prices/:kind (price PIN)
func SetPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := kindParam(c)
		if err != nil {
			return err
		}
		var body SetPriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.PartyID == 0 || body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "party_id and product_id are required")
		}
		if !body.PricePerKg.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "price_per_kg must be greater than 0")
		}

		row, err := SetPrice(database.DB, kind, body.PartyID, body.ProductID, body.PricePerKg, auth.Scope(c))
		switch {
		case err == nil:
			return c.JSON(row)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Party or product not found")
		case errors.Is(err, ErrGradeMismatch):
			return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("%s prices need a %s", kind, gradeFor(kind)))
		}
		return err
	}
}

// GET /api/prices/:kind/history?party_id=1&product_id=2
func PriceHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := kindParam(c)
		if err != nil {
			return err
		}
		dbq := database.DB.Where("kind = ?", kind)
		if pid := c.QueryInt("party_id"); pid > 0 {
			dbq = dbq.Where("party_id = ?", pid)
		}
		if pid := c.QueryInt("product_id"); pid > 0 {
			dbq = dbq.Where("product_id = ?", pid)
		}

		var rows []models.PriceHistory
		if err := dbq.Order("changed_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list price history")
		}
		return c.JSON(rows)
	}
}
