package cashbook

import (
	"fmt"
	"strings"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateReceiptRequest struct {
	PartyID       uint               `json:"party_id"`
	Date          string             `json:"date"` // "2024-03-05"
	Amount        decimal.Decimal    `json:"amount"`
	ReceiptNumber string             `json:"receipt_number"`
	Mode          models.PaymentMode `json:"mode"`
	Description   string             `json:"description"`
}

type ReceiptResponse struct {
	ID            uint               `json:"id"`
	PartyID       uint               `json:"party_id"`
	PartyName     string             `json:"party_name"`
	Date          string             `json:"date"`
	Amount        decimal.Decimal    `json:"amount"`
	ReceiptNumber string             `json:"receipt_number"`
	Mode          models.PaymentMode `json:"mode"`
	Description   string             `json:"description"`
}

func receiptResponse(r models.Receipt, loc *time.Location) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID,
		PartyID:       r.PartyID,
		PartyName:     models.PartyName(r.Party),
		Date:          r.Date.In(loc).Format(dateLayout),
		Amount:        r.Amount,
		ReceiptNumber: r.ReceiptNumber,
		Mode:          r.Mode,
		Description:   r.Description,
	}
}

// POST /api/receipts
func CreateReceiptHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReceiptRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.ReceiptNumber = strings.TrimSpace(body.ReceiptNumber)
		if body.Mode == "" {
			body.Mode = models.ModeCash
		}

		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
		}
		if body.ReceiptNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "receipt_number is required")
		}
		if !body.Mode.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "mode must be cash, bank, upi or cheque")
		}
		date, err := parseDate(body.Date, cfg.Location)
		if err != nil {
			return err
		}
		party, err := requireParty(body.PartyID, models.GradeSupplyParty)
		if err != nil {
			return err
		}

		r := models.Receipt{
			PartyID:       party.ID,
			Date:          date,
			Amount:        body.Amount,
			ReceiptNumber: body.ReceiptNumber,
			Mode:          body.Mode,
			Description:   strings.TrimSpace(body.Description),
		}
		err = createLogged(&r, func() audit.LogOptions {
			return audit.LogOptions{
				Scope:       auth.Scope(c),
				EntityType:  audit.EntityReceipt,
				EntityID:    r.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Receipt %s from %s: %s", r.ReceiptNumber, party.Name, r.Amount.StringFixed(2)),
				After:       r,
			}
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save receipt")
		}

		r.Party = party
		return c.Status(fiber.StatusCreated).JSON(receiptResponse(r, cfg.Location))
	}
}

// GET /api/receipts?from=&to=&party_id=
func ListReceiptsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := filterDates(c, database.DB.Model(&models.Receipt{}).Preload("Party"), cfg.Location)
		if err != nil {
			return err
		}
		if pid := c.QueryInt("party_id"); pid > 0 {
			dbq = dbq.Where("party_id = ?", pid)
		}

		var rows []models.Receipt
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list receipts")
		}
		resp := make([]ReceiptResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, receiptResponse(r, cfg.Location))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/receipts/:id (admin)
func DeleteReceiptHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return deleteLogged(c, audit.EntityReceipt, func(r *models.Receipt) string {
			return "receipt " + r.ReceiptNumber
		})
	}
}
