package cashbook

import (
	"fmt"
	"sort"
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

type CreateExpenseRequest struct {
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	VoucherNumber string          `json:"voucher_number"`
	PayTo         string          `json:"pay_to"`
	ExpenseGrade  string          `json:"expense_grade"`
	Description   string          `json:"description"`
}

type ExpenseResponse struct {
	ID            uint            `json:"id"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	VoucherNumber string          `json:"voucher_number"`
	PayTo         string          `json:"pay_to"`
	ExpenseGrade  string          `json:"expense_grade"`
	Description   string          `json:"description"`
}

type ExpenseSummaryItem struct {
	ExpenseGrade string          `json:"expense_grade"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
}

type ExpenseSummaryResponse struct {
	Items      []ExpenseSummaryItem `json:"items"`
	GrandTotal decimal.Decimal      `json:"grand_total"`
}

func expenseResponse(e models.Expense, loc *time.Location) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Date:          e.Date.In(loc).Format(dateLayout),
		Amount:        e.Amount,
		VoucherNumber: e.VoucherNumber,
		PayTo:         e.PayTo,
		ExpenseGrade:  e.ExpenseGrade,
		Description:   e.Description,
	}
}

// POST /api/expenses
func CreateExpenseHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.VoucherNumber = strings.TrimSpace(body.VoucherNumber)
		body.PayTo = strings.TrimSpace(body.PayTo)

		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
		}
		if body.VoucherNumber == "" || body.PayTo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "voucher_number and pay_to are required")
		}
		date, err := parseDate(body.Date, cfg.Location)
		if err != nil {
			return err
		}

		e := models.Expense{
			Date:          date,
			Amount:        body.Amount,
			VoucherNumber: body.VoucherNumber,
			PayTo:         body.PayTo,
			ExpenseGrade:  strings.TrimSpace(body.ExpenseGrade),
			Description:   strings.TrimSpace(body.Description),
		}
		err = createLogged(&e, func() audit.LogOptions {
			return audit.LogOptions{
				Scope:       auth.Scope(c),
				EntityType:  audit.EntityExpense,
				EntityID:    e.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Expense %s to %s: %s", e.VoucherNumber, e.PayTo, e.Amount.StringFixed(2)),
				After:       e,
			}
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}
		return c.Status(fiber.StatusCreated).JSON(expenseResponse(e, cfg.Location))
	}
}

// GET /api/expenses?from=&to=&grade=
func ListExpensesHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := filterDates(c, database.DB.Model(&models.Expense{}), cfg.Location)
		if err != nil {
			return err
		}
		if g := c.Query("grade"); g != "" {
			dbq = dbq.Where("expense_grade = ?", g)
		}

		var rows []models.Expense
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}
		resp := make([]ExpenseResponse, 0, len(rows))
		for _, e := range rows {
			resp = append(resp, expenseResponse(e, cfg.Location))
		}
		return c.JSON(resp)
	}
}

// GET /api/expenses/summary?from=&to=
// Totals per expense grade over the period.
func ExpenseSummaryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq, err := filterDates(c, database.DB.Model(&models.Expense{}), cfg.Location)
		if err != nil {
			return err
		}
		var rows []models.Expense
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not summarise expenses")
		}

		byGrade := map[string]*ExpenseSummaryItem{}
		grand := decimal.Zero
		for _, e := range rows {
			grade := e.ExpenseGrade
			if grade == "" {
				grade = "Other"
			}
			item, ok := byGrade[grade]
			if !ok {
				item = &ExpenseSummaryItem{ExpenseGrade: grade, Total: decimal.Zero}
				byGrade[grade] = item
			}
			item.Count++
			item.Total = item.Total.Add(e.Amount)
			grand = grand.Add(e.Amount)
		}

		items := make([]ExpenseSummaryItem, 0, len(byGrade))
		for _, it := range byGrade {
			items = append(items, *it)
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ExpenseGrade < items[j].ExpenseGrade })

		return c.JSON(ExpenseSummaryResponse{Items: items, GrandTotal: grand})
	}
}

// DELETE /api/expenses/:id (admin)
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return deleteLogged(c, audit.EntityExpense, func(e *models.Expense) string {
			return "expense " + e.VoucherNumber
		})
	}
}
