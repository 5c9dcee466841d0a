package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// AuditData runs a referential-integrity sweep over the stored data
// and reports dangling references.
func AuditData(c *fiber.Ctx) error {
	report, err := Backend.Audit()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}
