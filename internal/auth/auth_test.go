package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"
	"ledger-backend/internal/testutil"

	"github.com/alecthomas/assert/v2"
	"github.com/gofiber/fiber/v2"
)

var testCfg = &config.Config{JWTSecret: strings.Repeat("s", 32)}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = testutil.DB(t)

	app := fiber.New()
	app.Get("/auth/status", StatusHandler())
	app.Post("/auth/setup", SetupPinHandler())
	app.Post("/auth/login", LoginHandler(testCfg))
	app.Put("/auth/pin", ChangePinHandler())

	protected := app.Group("", JWTMiddleware(testCfg))
	protected.Get("/me", MeHandler())
	protected.Delete("/thing", RequireScope(models.ScopeAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, url, body, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func login(t *testing.T, app *fiber.App, scope, pin string) string {
	t.Helper()
	resp := send(t, app, http.MethodPost, "/auth/login", `{"scope":"`+scope+`","pin":"`+pin+`"}`, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Token
}

func TestPinSetupAndLogin(t *testing.T) {
	app := newTestApp(t)

	resp := send(t, app, http.MethodPost, "/auth/setup", `{"scope":"app","pin":"1234"}`, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/auth/setup", `{"scope":"app","pin":"9999"}`, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/auth/login", `{"scope":"app","pin":"0000"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := login(t, app, "app", "1234")
	claims, err := ParseToken(testCfg.JWTSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, models.ScopeApp, claims.Scope)

	resp = send(t, app, http.MethodGet, "/me", "", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSetupValidation(t *testing.T) {
	app := newTestApp(t)
	for _, body := range []string{
		`{"scope":"root","pin":"1234"}`,
		`{"scope":"app","pin":"12"}`,
		`{"scope":"app","pin":"12ab"}`,
	} {
		resp := send(t, app, http.MethodPost, "/auth/setup", body, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestRequireScope(t *testing.T) {
	app := newTestApp(t)
	send(t, app, http.MethodPost, "/auth/setup", `{"scope":"app","pin":"1111"}`, "")
	send(t, app, http.MethodPost, "/auth/setup", `{"scope":"admin","pin":"2222"}`, "")

	resp := send(t, app, http.MethodDelete, "/thing", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = send(t, app, http.MethodDelete, "/thing", "", login(t, app, "app", "1111"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodDelete, "/thing", "", login(t, app, "admin", "2222"))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRejectsForeignToken(t *testing.T) {
	app := newTestApp(t)
	token, err := GenerateToken(strings.Repeat("x", 32), models.ScopeAdmin)
	assert.NoError(t, err)

	resp := send(t, app, http.MethodGet, "/me", "", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestChangePin(t *testing.T) {
	app := newTestApp(t)
	send(t, app, http.MethodPost, "/auth/setup", `{"scope":"price","pin":"1234"}`, "")

	resp := send(t, app, http.MethodPut, "/auth/pin", `{"scope":"price","old_pin":"0000","new_pin":"5678"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = send(t, app, http.MethodPut, "/auth/pin", `{"scope":"price","old_pin":"1234","new_pin":"5678"}`, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	login(t, app, "price", "5678")
}
