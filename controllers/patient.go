package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/backend"
)

// GetPatientProfile returns a patient's profile by user ID
func GetPatientProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	// Patients can only read their own profile; doctors and admins may
	// read any.
	if currentRole(c) == "PATIENT" && id != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only view your own profile",
		})
	}
	profile, err := Backend.GetPatientProfile(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdatePatientProfile updates the authenticated patient's profile
func UpdatePatientProfile(c *fiber.Ctx) error {
	input := new(backend.PatientProfileInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	profile, err := Backend.UpdatePatientProfile(currentUserID(c), *input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}
