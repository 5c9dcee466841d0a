package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/backend"
	"github.com/clinicbook/clinic-app/utils"
)

// Backend is the API implementation all handlers delegate to. main
// wires either the mock or the database-backed implementation here
// before registering routes.
var Backend backend.API

func SetBackend(b backend.API) {
	Backend = b
}

// fail translates backend errors into HTTP responses.
func fail(c *fiber.Ctx, err error) error {
	var berr *backend.Error
	status := fiber.StatusInternalServerError
	if errors.As(err, &berr) {
		switch berr.Kind {
		case backend.AlreadyExists:
			status = fiber.StatusConflict
		case backend.NotFound:
			status = fiber.StatusNotFound
		case backend.PermissionDenied:
			status = fiber.StatusForbidden
		case backend.InvalidInput:
			status = fiber.StatusBadRequest
		}
	}
	return c.Status(status).JSON(utils.ErrorResponse{
		Message: "Request failed",
		Error:   err.Error(),
	})
}

// currentUserID returns the authenticated user's ID set by the JWT
// middleware.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func currentRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
