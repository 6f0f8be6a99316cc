package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// HeaderName is the request header carrying the API key.
const HeaderName = "X-API-Key"

// Config holds the auth middleware settings.
type Config struct {
	// ApiKey is the expected key. An empty key disables authentication.
	ApiKey string
}

// New returns a middleware rejecting requests without a matching API key.
func New(cfg Config) fiber.Handler {
	expected := []byte(cfg.ApiKey)
	return keyauth.New(keyauth.Config{
		Next: func(*fiber.Ctx) bool {
			return len(expected) == 0
		},
		KeyLookup: "header:" + HeaderName,
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		},
	})
}
