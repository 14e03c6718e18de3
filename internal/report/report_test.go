package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ledger-backend/internal/models"
	"ledger-backend/internal/testutil"

	"github.com/alecthomas/assert/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func on(date string, hour int) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

type fixture struct {
	db     *gorm.DB
	seller models.Party
	buyer  models.Party
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	f := fixture{db: db}

	f.seller = models.Party{Name: "Ravi Traders", Grade: models.GradePurchaseParty}
	f.buyer = models.Party{Name: "Kumar Stores", Grade: models.GradeSupplyParty}
	assert.NoError(t, db.Create(&f.seller).Error)
	assert.NoError(t, db.Create(&f.buyer).Error)
	tomato := models.Product{ProductName: "Tomato", GSTSlab: decimal.NewNullDecimal(d("5"))}
	assert.NoError(t, db.Create(&tomato).Error)

	purchase := models.PurchaseTransaction{
		PartyID: f.seller.ID, PurchaseVoucherNumber: "PV-1", IsBuilt: true, CreatedAt: on("2024-03-05", 9),
		Items: []models.PurchaseTransactionItem{
			{ProductID: tomato.ID, WeightKg: d("10"), PricePerKg: d("50"), GSTPercent: decimal.NewNullDecimal(d("5"))},
		},
	}
	assert.NoError(t, db.Create(&purchase).Error)
	assert.NoError(t, db.Create(&models.PurchaseTransaction{
		PartyID: f.seller.ID, PurchaseVoucherNumber: "PV-2", CreatedAt: on("2024-03-10", 9),
		Items: []models.PurchaseTransactionItem{{ProductID: tomato.ID, WeightKg: d("1"), PricePerKg: d("100")}},
	}).Error)
	assert.NoError(t, db.Create(&models.Payment{
		PartyID: f.seller.ID, Date: on("2024-03-06", 0), PaidAmount: d("150"), Mode: models.ModeBank, Description: "NEFT",
	}).Error)

	assert.NoError(t, db.Create(&models.SupplyTransaction{
		PartyID: f.buyer.ID, PurchaseTransactionID: purchase.ID, CreatedAt: on("2024-03-05", 11),
		Items: []models.SupplyTransactionItem{{ProductID: tomato.ID, WeightKg: d("10"), PricePerKg: d("60")}},
	}).Error)
	assert.NoError(t, db.Create(&models.Receipt{
		PartyID: f.buyer.ID, Date: on("2024-03-05", 0), Amount: d("200"), ReceiptNumber: "R-2", Mode: models.ModeUPI,
	}).Error)
	return f
}

func TestPurchasePartyStatement(t *testing.T) {
	f := setup(t)
	rep, err := NewService(f.db).Party(context.Background(), f.seller.ID, time.Time{}, time.Time{})
	assert.NoError(t, err)

	assert.Equal(t, 3, len(rep.Lines))
	first := rep.Lines[0]
	assert.Equal(t, Credit, first.Type)
	assert.Equal(t, "Purchase (Voucher: PV-1)", first.Description)
	assert.True(t, first.Amount.Equal(d("525")))
	assert.Equal(t, 1, len(first.Items))
	assert.Equal(t, "Tomato", first.Items[0].ProductName)
	assert.True(t, first.Items[0].GST.Equal(d("25")))

	assert.Equal(t, Debit, rep.Lines[1].Type)
	assert.Equal(t, "Payment - bank: NEFT", rep.Lines[1].Description)
	assert.True(t, rep.Lines[1].Balance.Equal(d("375")))

	assert.True(t, rep.TotalCredit.Equal(d("625")))
	assert.True(t, rep.TotalDebit.Equal(d("150")))
	assert.True(t, rep.Balance.Equal(d("475")))
	assert.True(t, rep.Lines[2].Balance.Equal(rep.Balance))
}

func TestSupplyPartyStatement(t *testing.T) {
	f := setup(t)
	rep, err := NewService(f.db).Party(context.Background(), f.buyer.ID, time.Time{}, time.Time{})
	assert.NoError(t, err)

	assert.Equal(t, 2, len(rep.Lines))
	// the receipt is dated at midnight, before the supply
	assert.Equal(t, "Receipt - upi (Receipt: R-2)", rep.Lines[0].Description)
	assert.Equal(t, Credit, rep.Lines[0].Type)
	assert.Equal(t, "Supply (Voucher: PV-1)", rep.Lines[1].Description)
	assert.True(t, rep.Lines[1].Amount.Equal(d("600")))
	assert.True(t, rep.Balance.Equal(d("-400")))
}

func TestStatementWindow(t *testing.T) {
	f := setup(t)
	rep, err := NewService(f.db).Party(context.Background(), f.seller.ID, on("2024-03-01", 0), on("2024-03-06", 0))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rep.Lines))
	assert.Equal(t, "PV-1", rep.Lines[0].Voucher)
}

func TestUnknownParty(t *testing.T) {
	f := setup(t)
	_, err := NewService(f.db).Party(context.Background(), 999, time.Time{}, time.Time{})
	assert.IsError(t, err, gorm.ErrRecordNotFound)
}

func newApp(db *gorm.DB) *fiber.App {
	svc := NewService(db)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/api/reports/party/:id", PartyReportHandler(svc, time.UTC))
	app.Get("/api/reports/party/:id/export", PartyExportHandler(svc, time.UTC))
	return app
}

func TestPartyReportHandler(t *testing.T) {
	f := setup(t)
	app := newApp(f.db)

	// to is inclusive
	req := httptest.NewRequest("GET", "/api/reports/party/1?from=2024-03-05&to=2024-03-06", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Lines   []Line          `json:"lines"`
		Balance decimal.Decimal `json:"balance"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, len(body.Lines))
	assert.True(t, body.Balance.Equal(d("375")))

	for _, tc := range []struct {
		url  string
		code int
	}{
		{"/api/reports/party/999", fiber.StatusNotFound},
		{"/api/reports/party/abc", fiber.StatusBadRequest},
		{"/api/reports/party/1?from=05-03-2024", fiber.StatusBadRequest},
		{"/api/reports/party/1?from=2024-03-07&to=2024-03-05", fiber.StatusBadRequest},
	} {
		resp, err := app.Test(httptest.NewRequest("GET", tc.url, nil))
		assert.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.url)
	}
}

func TestPartyExportHandler(t *testing.T) {
	f := setup(t)
	app := newApp(f.db)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/party/1/export", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "ravi_traders_report.xlsx")

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	assert.NoError(t, err)
	defer book.Close()

	title, err := book.GetCellValue(sheet, "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Ravi Traders (purchase_party)", title)
	rng, err := book.GetCellValue(sheet, "B2")
	assert.NoError(t, err)
	assert.Equal(t, "All to All", rng)

	rows, err := book.GetRows(sheet)
	assert.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[1])
	assert.Equal(t, "475", last[5])
}
