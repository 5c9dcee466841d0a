package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole checks if the authenticated user has one of the required
// roles. Must run after Protected, which sets the role local.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No role found",
			})
		}

		for _, required := range roles {
			if role == required {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have the required role to perform this action",
		})
	}
}
