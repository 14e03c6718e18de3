package master

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger-backend/internal/database"
	"ledger-backend/internal/models"
	"ledger-backend/internal/testutil"

	"github.com/alecthomas/assert/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = testutil.DB(t)

	app := fiber.New()
	app.Get("/parties", ListPartiesHandler())
	app.Post("/parties", CreatePartyHandler())
	app.Put("/parties/:id", UpdatePartyHandler())
	app.Delete("/parties/:id", DeletePartyHandler())
	app.Get("/products", ListProductsHandler())
	app.Post("/products", CreateProductHandler())
	app.Put("/prices/:kind", SetPriceHandler())
	app.Get("/prices/:kind", ListPricesHandler())
	app.Get("/prices/:kind/history", PriceHistoryHandler())
	return app
}

func send(t *testing.T, app *fiber.App, method, url, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestPartyCRUD(t *testing.T) {
	app := newTestApp(t)

	resp := send(t, app, http.MethodPost, "/parties", `{"name":"  Ravi Traders ","city":"Salem","grade":"purchase_party"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[models.Party](t, resp)
	assert.Equal(t, "Ravi Traders", created.Name)

	resp = send(t, app, http.MethodPost, "/parties", `{"name":"X","grade":"vendor"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	send(t, app, http.MethodPost, "/parties", `{"name":"Kumar Stores","grade":"supply_party"}`)

	resp = send(t, app, http.MethodGet, "/parties?grade=supply_party", "")
	list := decode[[]models.Party](t, resp)
	assert.Equal(t, 1, len(list))
	assert.Equal(t, "Kumar Stores", list[0].Name)

	resp = send(t, app, http.MethodGet, "/parties?q=ravi", "")
	list = decode[[]models.Party](t, resp)
	assert.Equal(t, 1, len(list))

	resp = send(t, app, http.MethodPut, "/parties/999", `{"name":"A","grade":"supply_party"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeletePartyInUse(t *testing.T) {
	app := newTestApp(t)
	party := models.Party{Name: "Ravi", Grade: models.GradePurchaseParty}
	assert.NoError(t, database.DB.Create(&party).Error)
	product := models.Product{ProductName: "Onion"}
	assert.NoError(t, database.DB.Create(&product).Error)
	_, err := SetPrice(database.DB, models.PriceKindPurchase, party.ID, product.ID, decimal.NewFromInt(30), models.ScopePrice)
	assert.NoError(t, err)

	resp := send(t, app, http.MethodDelete, "/parties/1", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateUnconfirmedProduct(t *testing.T) {
	app := newTestApp(t)
	resp := send(t, app, http.MethodPost, "/products", `{"product_name":"Garlic","gst_slab":"5","confirmed":false}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.False(t, decode[models.Product](t, resp).Confirmed)

	var p models.Product
	assert.NoError(t, database.DB.First(&p).Error)
	assert.False(t, p.Confirmed)
	assert.True(t, p.GSTSlab.Valid)
	assert.True(t, decimal.NewFromInt(5).Equal(p.GSTSlab.Decimal))

	resp = send(t, app, http.MethodPost, "/products", `{"product_name":"Garlic","gst_slab":"150"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateProductConfirmedByDefault(t *testing.T) {
	app := newTestApp(t)
	resp := send(t, app, http.MethodPost, "/products", `{"product_name":"Onion"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var p models.Product
	assert.NoError(t, database.DB.First(&p).Error)
	assert.True(t, p.Confirmed)
	assert.False(t, p.GSTSlab.Valid)

	resp = send(t, app, http.MethodGet, "/products?confirmed=false", "")
	assert.Equal(t, 0, len(decode[[]models.Product](t, resp)))
}

func TestSetPriceRecordsHistoryAndAudit(t *testing.T) {
	app := newTestApp(t)
	party := models.Party{Name: "Kumar", Grade: models.GradeSupplyParty}
	assert.NoError(t, database.DB.Create(&party).Error)
	product := models.Product{ProductName: "Onion"}
	assert.NoError(t, database.DB.Create(&product).Error)

	resp := send(t, app, http.MethodPut, "/prices/supply", `{"party_id":1,"product_id":1,"price_per_kg":"40"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = send(t, app, http.MethodPut, "/prices/supply", `{"party_id":1,"product_id":1,"price_per_kg":"42.50"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	price, ok, err := LookupPrice(database.DB, models.PriceKindSupply, party.ID, product.ID)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("42.5").Equal(price))

	resp = send(t, app, http.MethodGet, "/prices/supply/history?party_id=1", "")
	history := decode[[]models.PriceHistory](t, resp)
	assert.Equal(t, 2, len(history))
	assert.True(t, history[0].OldPrice.Valid)
	assert.False(t, history[1].OldPrice.Valid)

	var logs int64
	database.DB.Model(&models.AuditLog{}).Count(&logs)
	assert.Equal(t, int64(2), logs)

	// a purchase price for a supply party is refused
	resp = send(t, app, http.MethodPut, "/prices/purchase", `{"party_id":1,"product_id":1,"price_per_kg":"40"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	_, ok, err = LookupPrice(database.DB, models.PriceKindPurchase, party.ID, product.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
}
