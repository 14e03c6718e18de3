package auth

import (
	"errors"
	"strings"

	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PinRequest struct {
	Scope models.PinScope `json:"scope"`
	Pin   string          `json:"pin"`
}

type ChangePinRequest struct {
	Scope  models.PinScope `json:"scope"`
	OldPin string          `json:"old_pin"`
	NewPin string          `json:"new_pin"`
}

func validScope(s models.PinScope) bool {
	switch s {
	case models.ScopeApp, models.ScopeAdmin, models.ScopePrice:
		return true
	}
	return false
}

// validPin accepts 4 to 8 digits.
func validPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func findPin(scope models.PinScope) (*models.AppConfig, error) {
	var row models.AppConfig
	if err := database.DB.Where("scope = ?", scope).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GET /api/auth/status
func StatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.AppConfig
		if err := database.DB.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read PIN settings")
		}
		configured := fiber.Map{
			string(models.ScopeApp):   false,
			string(models.ScopeAdmin): false,
			string(models.ScopePrice): false,
		}
		for _, r := range rows {
			configured[string(r.Scope)] = true
		}
		return c.JSON(fiber.Map{"configured": configured})
	}
}

// POST /api/auth/setup - first time PIN for a scope
func SetupPinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Pin = strings.TrimSpace(body.Pin)
		if !validScope(body.Scope) {
			return fiber.NewError(fiber.StatusBadRequest, "scope must be app, admin or price")
		}
		if !validPin(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "PIN must be 4 to 8 digits")
		}

		if _, err := findPin(body.Scope); err == nil {
			return fiber.NewError(fiber.StatusConflict, "PIN already set for "+string(body.Scope))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read PIN settings")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Pin), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash PIN")
		}
		row := models.AppConfig{Scope: body.Scope, PinHash: string(hash)}
		if err := database.DB.Create(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save PIN")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"scope": row.Scope})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validScope(body.Scope) {
			return fiber.NewError(fiber.StatusBadRequest, "scope must be app, admin or price")
		}

		row, err := findPin(body.Scope)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong PIN")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(row.PinHash), []byte(strings.TrimSpace(body.Pin))); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong PIN")
		}

		token, err := GenerateToken(cfg.JWTSecret, body.Scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create token")
		}
		return c.JSON(fiber.Map{"token": token, "scope": body.Scope})
	}
}

// PUT /api/auth/pin
func ChangePinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangePinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validScope(body.Scope) {
			return fiber.NewError(fiber.StatusBadRequest, "scope must be app, admin or price")
		}
		if !validPin(body.NewPin) {
			return fiber.NewError(fiber.StatusBadRequest, "PIN must be 4 to 8 digits")
		}

		row, err := findPin(body.Scope)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No PIN set for "+string(body.Scope))
		}
		if err := bcrypt.CompareHashAndPassword([]byte(row.PinHash), []byte(body.OldPin)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong PIN")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPin), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash PIN")
		}
		if err := database.DB.Model(row).Update("pin_hash", string(hash)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save PIN")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"scope": Scope(c)})
	}
}
