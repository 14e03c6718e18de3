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

type CreatePaymentRequest struct {
	PartyID     uint               `json:"party_id"`
	Date        string             `json:"date"`
	PaidAmount  decimal.Decimal    `json:"paid_amount"`
	Mode        models.PaymentMode `json:"mode"`
	Description string             `json:"description"`
}

type PaymentResponse struct {
	ID          uint               `json:"id"`
	PartyID     uint               `json:"party_id"`
	PartyName   string             `json:"party_name"`
	Date        string             `json:"date"`
	PaidAmount  decimal.Decimal    `json:"paid_amount"`
	Mode        models.PaymentMode `json:"mode"`
	Description string             `json:"description"`
}

func paymentResponse(p models.Payment, loc *time.Location) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		PartyID:     p.PartyID,
		PartyName:   models.PartyName(p.Party),
		Date:        p.Date.In(loc).Format(dateLayout),
		PaidAmount:  p.PaidAmount,
		Mode:        p.Mode,
		Description: p.Description,
	}
}

// POST /api/payments
func CreatePaymentHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Mode == "" {
			body.Mode = models.ModeCash
		}

		if !body.PaidAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "paid_amount must be greater than 0")
		}
		if !body.Mode.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "mode must be cash, bank, upi or cheque")
		}
		date, err := parseDate(body.Date, cfg.Location)
		if err != nil {
			return err
		}
		party, err := requireParty(body.PartyID, models.GradePurchaseParty)
		if err != nil {
			return err
		}

		p := models.Payment{
			PartyID:     party.ID,
			Date:        date,
			PaidAmount:  body.PaidAmount,
			Mode:        body.Mode,
			Description: strings.TrimSpace(body.Description),
		}
		err = createLogged(&p, func() audit.LogOptions {
			return audit.LogOptions{
				Scope:       auth.Scope(c),
				EntityType:  audit.EntityPayment,
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Payment to %s (%s): %s", party.Name, p.Mode, p.PaidAmount.StringFixed(2)),
				After:       p,
			}
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save payment")
		}

		p.Party = party
		return c.Status(fiber.StatusCreated).JSON(paymentResponse(p, cfg.Location))
	}
}

// GET /api/payments?from=&to=&party_id=
func ListPaymentsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := filterDates(c, database.DB.Model(&models.Payment{}).Preload("Party"), cfg.Location)
		if err != nil {
			return err
		}
		if pid := c.QueryInt("party_id"); pid > 0 {
			dbq = dbq.Where("party_id = ?", pid)
		}

		var rows []models.Payment
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}
		resp := make([]PaymentResponse, 0, len(rows))
		for _, p := range rows {
			resp = append(resp, paymentResponse(p, cfg.Location))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/payments/:id (admin)
func DeletePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return deleteLogged(c, audit.EntityPayment, func(p *models.Payment) string {
			return fmt.Sprintf("payment of %s", p.PaidAmount.StringFixed(2))
		})
	}
}
