package daybook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

func newTestApp(src Source, opts ...Option) *fiber.App {
	e := New(src, append([]Option{WithLocation(time.UTC)}, opts...)...)
	app := fiber.New()
	app.Get("/daybook", RangeHandler(e))
	app.Get("/daybook/opening", OpeningHandler(e))
	app.Get("/daybook/export", ExportHandler(e))
	return app
}

func workedExample() *fakeSource {
	src := &fakeSource{}
	src.addReceipt("2024-03-04", "1000.00", "R-0")
	src.addPurchase(1, "Ravi Traders", "PV-1", at("2024-03-05", 9), false, pline("10", "50"))
	src.addReceipt("2024-03-05", "200.00", "R-1")
	src.addPayment("2024-03-05", "150.00")
	src.addExpense("2024-03-05", "50.00", "E-1")
	return src
}

func get(t *testing.T, app *fiber.App, url string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	assert.NoError(t, err)
	return resp
}

func TestRangeHandler(t *testing.T) {
	resp := get(t, newTestApp(workedExample()), "/daybook?from=2024-03-05&to=2024-03-05")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body RangeResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "2024-03-05", body.From)
	assert.Equal(t, 1, len(body.Days))

	d := body.Days[0]
	assertDec(t, "1000", d.OpeningCashInHand)
	assertDec(t, "1700", d.TotalCredit)
	assertDec(t, "700", d.TotalDebit)
	assertDec(t, "1000", d.ClosingCashInHand)
	assert.Equal(t, KindPurchase, d.Entries[1].Kind)
	assert.Equal(t, SectionPurchase, d.Entries[1].Section)
	assert.Equal(t, Section(""), d.Entries[0].Section)
	assertDec(t, "1000", body.FinalCashInHand)
}

func TestRangeHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		opts []Option
		url  string
		want int
	}{
		{"missing to", &fakeSource{}, nil, "/daybook?from=2024-03-05", fiber.StatusBadRequest},
		{"bad date", &fakeSource{}, nil, "/daybook?from=05-03-2024&to=2024-03-05", fiber.StatusBadRequest},
		{"inverted", &fakeSource{}, nil, "/daybook?from=2024-03-06&to=2024-03-05", fiber.StatusBadRequest},
		{"source down", &fakeSource{fail: "receipts"}, nil, "/daybook?from=2024-03-05&to=2024-03-05", fiber.StatusBadGateway},
		{"slow source", &fakeSource{delay: 200 * time.Millisecond}, []Option{WithFetchTimeout(20 * time.Millisecond)},
			"/daybook?from=2024-03-05&to=2024-03-05", fiber.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, newTestApp(tt.src, tt.opts...), tt.url)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestOpeningHandler(t *testing.T) {
	resp := get(t, newTestApp(workedExample()), "/daybook/opening?date=2024-03-06")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body OpeningResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "2024-03-06", body.Date)
	assertDec(t, "1000", body.OpeningCashInHand)
}

func TestExportHandler(t *testing.T) {
	resp := get(t, newTestApp(workedExample()), "/daybook/export?from=2024-03-05&to=2024-03-05")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "daybook_2024-03-05_2024-03-05.xlsx")

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	assert.NoError(t, err)

	var labels []string
	for _, r := range rows {
		if len(r) > 1 {
			labels = append(labels, r[1])
		}
	}
	for _, want := range []string{"PURCHASE", "Ravi Traders (PV-1)", "Purchase A/C Credit", "PAYMENTS", "EXPENSES", "Closing cash in hand", "Final cash in hand"} {
		assert.True(t, slices.Contains(labels, want), "missing %q", want)
	}
	// receipts only get a header after the sales account line
	assert.False(t, slices.Contains(labels, "RECEIPTS"))
}

func TestHTTPErrorCallerCancel(t *testing.T) {
	var fe *fiber.Error
	assert.True(t, errors.As(httpError(context.Canceled), &fe))
	assert.Equal(t, statusClientClosed, fe.Code)
}
