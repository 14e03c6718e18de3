package dashboard

import (
	"fmt"
	"sort"
	"time"

	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

type CashChartPoint struct {
	Label    string          `json:"label"` // day / week start / month start
	Receipts decimal.Decimal `json:"receipts"`
	Payments decimal.Decimal `json:"payments"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type CashChartResponse struct {
	Period      string           `json:"period"` // daily | weekly | monthly
	From        string           `json:"from"`
	To          string           `json:"to"`
	Points      []CashChartPoint `json:"points"`
	GrandTotals CashChartPoint   `json:"grand_totals"`
}

var now = time.Now

// bucketStart truncates t to the start of its day, ISO week or month.
func bucketStart(t time.Time, period string, loc *time.Location) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	switch period {
	case "weekly":
		offset := (int(day.Weekday()) + 6) % 7 // Monday first
		return day.AddDate(0, 0, -offset)
	case "monthly":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	}
	return day
}

func step(t time.Time, period string, n int) time.Time {
	switch period {
	case "weekly":
		return t.AddDate(0, 0, 7*n)
	case "monthly":
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// GET /api/dashboard/cash-chart?period=daily&count=7
func CashChartHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		var count int
		switch period {
		case "daily":
			count = 7
		case "weekly":
			count = 8
		case "monthly":
			count = 12
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}
		if v := c.Query("count"); v != "" {
			if _, err := fmt.Sscan(v, &count); err != nil || count <= 0 || count > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid count")
			}
		}

		last := bucketStart(now(), period, cfg.Location)
		start := step(last, period, -(count - 1))
		end := step(last, period, 1)

		var receipts []models.Receipt
		var payments []models.Payment
		var expenses []models.Expense
		db := database.DB.WithContext(c.UserContext())
		if err := db.Where("date >= ? AND date < ?", start.UTC(), end.UTC()).Find(&receipts).Error; err != nil {
			log.Errorf("cash chart receipts: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chart data")
		}
		if err := db.Where("date >= ? AND date < ?", start.UTC(), end.UTC()).Find(&payments).Error; err != nil {
			log.Errorf("cash chart payments: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chart data")
		}
		if err := db.Where("date >= ? AND date < ?", start.UTC(), end.UTC()).Find(&expenses).Error; err != nil {
			log.Errorf("cash chart expenses: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chart data")
		}

		buckets := make(map[time.Time]*CashChartPoint, count)
		for b := start; b.Before(end); b = step(b, period, 1) {
			buckets[b] = &CashChartPoint{
				Label:    b.Format("2006-01-02"),
				Receipts: decimal.Zero, Payments: decimal.Zero, Expenses: decimal.Zero,
			}
		}
		at := func(t time.Time) *CashChartPoint {
			return buckets[bucketStart(t, period, cfg.Location)]
		}
		for _, r := range receipts {
			if p := at(r.Date); p != nil {
				p.Receipts = p.Receipts.Add(r.Amount)
			}
		}
		for _, pm := range payments {
			if p := at(pm.Date); p != nil {
				p.Payments = p.Payments.Add(pm.PaidAmount)
			}
		}
		for _, ex := range expenses {
			if p := at(ex.Date); p != nil {
				p.Expenses = p.Expenses.Add(ex.Amount)
			}
		}

		// sort by bucket date
		keys := make([]time.Time, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

		grand := CashChartPoint{Label: "total", Receipts: decimal.Zero, Payments: decimal.Zero, Expenses: decimal.Zero}
		points := make([]CashChartPoint, 0, len(keys))
		for _, k := range keys {
			p := buckets[k]
			p.Net = p.Receipts.Sub(p.Payments).Sub(p.Expenses)
			points = append(points, *p)
			grand.Receipts = grand.Receipts.Add(p.Receipts)
			grand.Payments = grand.Payments.Add(p.Payments)
			grand.Expenses = grand.Expenses.Add(p.Expenses)
		}
		grand.Net = grand.Receipts.Sub(grand.Payments).Sub(grand.Expenses)

		return c.JSON(CashChartResponse{
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		})
	}
}
