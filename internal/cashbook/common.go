// Package cashbook records the cash movements of the ledger: receipts from
// supply parties, payments to purchase parties and expenses.
package cashbook

import (
	"fmt"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func parseDate(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date is required (YYYY-MM-DD)")
	}
	d, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return d, nil
}

// filterDates applies the optional inclusive from/to query params to the
// date column. Bounds are bound in UTC like the stored dates.
func filterDates(c *fiber.Ctx, dbq *gorm.DB, loc *time.Location) (*gorm.DB, error) {
	if v := c.Query("from"); v != "" {
		from, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid from")
		}
		dbq = dbq.Where("date >= ?", from.UTC())
	}
	if v := c.Query("to"); v != "" {
		to, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid to")
		}
		dbq = dbq.Where("date < ?", to.AddDate(0, 0, 1).UTC())
	}
	return dbq, nil
}

func requireParty(id uint, grade models.PartyGrade) (*models.Party, error) {
	var party models.Party
	if err := database.DB.First(&party, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Party not found")
	}
	if party.Grade != grade {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is not a %s", party.Name, grade))
	}
	return &party, nil
}

// createLogged inserts row and its audit entry in one transaction.
func createLogged(row any, opts func() audit.LogOptions) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Party").Create(row).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, opts())
	})
}

func idParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// deleteLogged removes the row with the id in the path after snapshotting it
// into the audit log.
func deleteLogged[T any](c *fiber.Ctx, entity string, describe func(*T) string) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var row T
	if err := database.DB.First(&row, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Record not found")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       auth.Scope(c),
			EntityType:  entity,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Deleted " + describe(&row),
			Before:      row,
		})
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete record")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
