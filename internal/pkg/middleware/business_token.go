package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BusinessTokenLocal is the fiber locals key holding the per-tenant business
// authorization token for the current request.
const BusinessTokenLocal = "BUSINESS_AUTH_TOKEN"

// BusinessTokenMiddleware requires a bearer credential on payment routes and
// stashes it request-scoped. The token is the tenant's provider secret; it is
// forwarded per call to the gateway and never persisted or cached.
func BusinessTokenMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing business authorization token"})
		}

		c.Locals(BusinessTokenLocal, token)
		return c.Next()
	}
}

// BusinessTokenFromContext returns the token stored by the middleware.
func BusinessTokenFromContext(c *fiber.Ctx) string {
	token, _ := c.Locals(BusinessTokenLocal).(string)
	return token
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
