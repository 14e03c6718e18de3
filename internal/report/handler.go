package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func parseRange(c *fiber.Ctx, loc *time.Location) (time.Time, time.Time, error) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	}
	return from, to, nil
}

func load(c *fiber.Ctx, svc *Service, loc *time.Location) (*PartyReport, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid party id")
	}
	from, to, err := parseRange(c, loc)
	if err != nil {
		return nil, err
	}
	rep, err := svc.Party(c.UserContext(), uint(id), from, to)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Party not found")
	}
	if err != nil {
		log.Errorf("party report %d: %v", id, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not build report")
	}
	for i := range rep.Lines {
		rep.Lines[i].Date = rep.Lines[i].Date.In(loc)
	}
	return rep, nil
}

// GET /api/reports/party/:id?from=&to=
func PartyReportHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := load(c, svc, loc)
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/party/:id/export?from=&to=
func PartyExportHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := load(c, svc, loc)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rep); err != nil {
			log.Errorf("party report export: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Export failed")
		}
		name := strings.ReplaceAll(strings.ToLower(rep.Party.Name), " ", "_")
		c.Attachment(fmt.Sprintf("%s_report.xlsx", name))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}
