package middleware

import (
	"strings"

	"album-service/internal/models"

	"github.com/gofiber/fiber/v3"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token to the caller's identity
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// identity in the request locals.
func Auth(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization token",
			})
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header must use the Bearer scheme",
			})
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity set by Auth
func IdentityFrom(c fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok
}
