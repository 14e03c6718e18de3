// Package master serves the party, product and price masters.
package master

import (
	"strings"

	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PartyRequest struct {
	Name         string            `json:"name"`
	MobileNumber string            `json:"mobile_number"`
	City         string            `json:"city"`
	Grade        models.PartyGrade `json:"grade"`
}

func validGrade(g models.PartyGrade) bool {
	return g == models.GradePurchaseParty || g == models.GradeSupplyParty
}

func (r *PartyRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)
	r.City = strings.TrimSpace(r.City)
	if r.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if !validGrade(r.Grade) {
		return fiber.NewError(fiber.StatusBadRequest, "grade must be purchase_party or supply_party")
	}
	return nil
}

// GET /api/parties?grade=purchase_party&q=ravi
func ListPartiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Party{})
		if g := models.PartyGrade(c.Query("grade")); g != "" {
			if !validGrade(g) {
				return fiber.NewError(fiber.StatusBadRequest, "invalid grade")
			}
			dbq = dbq.Where("grade = ?", g)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}

		var parties []models.Party
		if err := dbq.Order("name asc").Find(&parties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list parties")
		}
		return c.JSON(parties)
	}
}

// POST /api/parties
func CreatePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PartyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		party := models.Party{Name: body.Name, MobileNumber: body.MobileNumber, City: body.City, Grade: body.Grade}
		if err := database.DB.Create(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create party")
		}
		return c.Status(fiber.StatusCreated).JSON(party)
	}
}

// PUT /api/parties/:id
func UpdatePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var party models.Party
		if err := database.DB.First(&party, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Party not found")
		}

		var body PartyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		party.Name = body.Name
		party.MobileNumber = body.MobileNumber
		party.City = body.City
		party.Grade = body.Grade
		if err := database.DB.Save(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update party")
		}
		return c.JSON(party)
	}
}

// DELETE /api/parties/:id (admin). Parties with transactions, cash records or
// prices are kept.
func DeletePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var party models.Party
		if err := database.DB.First(&party, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Party not found")
		}

		for _, model := range []any{
			&models.PurchaseTransaction{}, &models.SupplyTransaction{},
			&models.Receipt{}, &models.Payment{},
			&models.PurchasePrice{}, &models.SupplyPrice{},
		} {
			var n int64
			if err := database.DB.Model(model).Where("party_id = ?", party.ID).Count(&n).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not check party usage")
			}
			if n > 0 {
				return fiber.NewError(fiber.StatusConflict, "Party is in use and cannot be deleted")
			}
		}

		if err := database.DB.Delete(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete party")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
