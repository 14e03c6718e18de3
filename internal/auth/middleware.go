package auth

import (
	"slices"
	"strings"

	"ledger-backend/internal/config"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxScopeKey = "pin_scope"

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxScopeKey, claims.Scope)
		return c.Next()
	}
}

// Scope returns the PIN scope of the current request, if any.
func Scope(c *fiber.Ctx) models.PinScope {
	s, _ := c.Locals(CtxScopeKey).(models.PinScope)
	return s
}

// RequireScope lets the request through only when its token was issued for
// one of the given scopes.
func RequireScope(allowed ...models.PinScope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := Scope(c)
		if scope == "" {
			return fiber.NewError(fiber.StatusForbidden, "No PIN scope on request")
		}
		if slices.Contains(allowed, scope) {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusForbidden, "This action needs the "+string(allowed[0])+" PIN")
	}
}
