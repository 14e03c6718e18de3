package daybook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

type EntryResponse struct {
	Kind        EntryKind       `json:"kind"`
	Section     Section         `json:"section,omitempty"` // header printed before this entry
	Description string          `json:"description"`
	Credit      decimal.Decimal `json:"credit"`
	Debit       decimal.Decimal `json:"debit"`
	Voucher     string          `json:"voucher,omitempty"`
	Date        string          `json:"date"`
}

type DayResponse struct {
	Date              string          `json:"date"`
	Entries           []EntryResponse `json:"entries"`
	OpeningCashInHand decimal.Decimal `json:"opening_cash_in_hand"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	ClosingCashInHand decimal.Decimal `json:"closing_cash_in_hand"`
}

type RangeResponse struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	Days              []DayResponse   `json:"days"`
	OpeningCashInHand decimal.Decimal `json:"opening_cash_in_hand"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	FinalCashInHand   decimal.Decimal `json:"final_cash_in_hand"`
}

type OpeningResponse struct {
	Date              string          `json:"date"`
	OpeningCashInHand decimal.Decimal `json:"opening_cash_in_hand"`
}

const dateLayout = "2006-01-02"

// statusClientClosed is the nginx convention for a request the client
// abandoned.
const statusClientClosed = 499

func toResponse(r RangeSummary) RangeResponse {
	res := RangeResponse{
		From:              r.From.Format(dateLayout),
		To:                r.To.Format(dateLayout),
		Days:              make([]DayResponse, 0, len(r.Days)),
		OpeningCashInHand: r.OpeningCashInHand,
		TotalCredit:       r.TotalCredit,
		TotalDebit:        r.TotalDebit,
		FinalCashInHand:   r.FinalCashInHand,
	}
	for _, d := range r.Days {
		sections := Sections(d.Entries)
		day := DayResponse{
			Date:              d.Date.Format(dateLayout),
			Entries:           make([]EntryResponse, 0, len(d.Entries)),
			OpeningCashInHand: d.OpeningCashInHand,
			TotalCredit:       d.TotalCredit,
			TotalDebit:        d.TotalDebit,
			ClosingCashInHand: d.ClosingCashInHand,
		}
		for i, e := range d.Entries {
			day.Entries = append(day.Entries, EntryResponse{
				Kind:        e.Kind,
				Section:     sections[i],
				Description: e.Description,
				Credit:      e.Credit,
				Debit:       e.Debit,
				Voucher:     e.Voucher,
				Date:        e.Date.Format(dateLayout),
			})
		}
		res.Days = append(res.Days, day)
	}
	return res
}

func parseDate(e *Engine, c *fiber.Ctx, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" is required (YYYY-MM-DD)")
	}
	t, err := time.ParseInLocation(dateLayout, v, e.Location())
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" must be YYYY-MM-DD")
	}
	return t, nil
}

func parseRange(e *Engine, c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := parseDate(e, c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(e, c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// httpError maps engine errors to responses.
func httpError(err error) error {
	var rangeErr *InvalidRangeError
	var srcErr *DataSourceError
	switch {
	case errors.Is(err, context.Canceled):
		return fiber.NewError(statusClientClosed, "Request cancelled")
	case errors.As(err, &rangeErr):
		return fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	case errors.Is(err, ErrFetchTimeout):
		log.Warnf("daybook: %v", err)
		return fiber.NewError(fiber.StatusGatewayTimeout, "Daybook data took too long to load")
	case errors.As(err, &srcErr):
		log.Errorf("daybook: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "Daybook data could not be loaded")
	}
	return err
}

// GET /api/daybook?from=2024-03-01&to=2024-03-31
func RangeHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(e, c)
		if err != nil {
			return err
		}
		r, err := e.Generate(c.UserContext(), from, to)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(toResponse(r))
	}
}

// GET /api/daybook/opening?date=2024-03-01
func OpeningHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		date, err := parseDate(e, c, "date")
		if err != nil {
			return err
		}
		opening, err := e.OpeningBalance(c.UserContext(), date)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(OpeningResponse{Date: date.Format(dateLayout), OpeningCashInHand: opening})
	}
}

// GET /api/daybook/export?from=2024-03-01&to=2024-03-31
func ExportHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(e, c)
		if err != nil {
			return err
		}
		r, err := e.Generate(c.UserContext(), from, to)
		if err != nil {
			return httpError(err)
		}

		var buf bytes.Buffer
		if err := WriteXLSX(&buf, r); err != nil {
			log.Errorf("daybook export: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Export failed")
		}

		c.Attachment(fmt.Sprintf("daybook_%s_%s.xlsx", from.Format(dateLayout), to.Format(dateLayout)))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}
