package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/backend"
)

// CreateAppointment books a new appointment for the authenticated
// patient.
func CreateAppointment(c *fiber.Ctx) error {
	input := new(backend.BookAppointmentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	// Patients can only book for themselves.
	if currentRole(c) == "PATIENT" {
		input.PatientID = currentUserID(c)
	}

	appointment, err := Backend.BookAppointment(*input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetAppointments lists all appointments the authenticated user takes
// part in, either side of the table.
func GetAppointments(c *fiber.Ctx) error {
	appointments, err := Backend.ListAppointments(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointments)
}

// CancelAppointment cancels an appointment on behalf of the requester
func CancelAppointment(c *fiber.Ctx) error {
	type CancelInput struct {
		Reason string `json:"reason"`
	}
	input := new(CancelInput)
	if err := c.BodyParser(input); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	appointment, err := Backend.CancelAppointment(c.Params("id"), input.Reason, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointment)
}

// RescheduleAppointment moves an appointment to a new date and time
func RescheduleAppointment(c *fiber.Ctx) error {
	input := new(backend.RescheduleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	input.AppointmentID = c.Params("id")
	input.RequesterID = currentUserID(c)

	appointment, err := Backend.RescheduleAppointment(*input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointment)
}

// ConfirmAppointment confirms a pending appointment (doctor only)
func ConfirmAppointment(c *fiber.Ctx) error {
	appointment, err := Backend.ConfirmAppointment(c.Params("id"), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointment)
}

// CompleteAppointment marks an appointment as completed (doctor only)
func CompleteAppointment(c *fiber.Ctx) error {
	appointment, err := Backend.CompleteAppointment(c.Params("id"), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointment)
}

// MarkNoShow marks an appointment as a no-show (doctor only)
func MarkNoShow(c *fiber.Ctx) error {
	appointment, err := Backend.MarkNoShow(c.Params("id"), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appointment)
}

// GetAvailableSlots returns the bookable slots for a doctor on a date
func GetAvailableSlots(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date query parameter is required",
		})
	}
	slots, err := Backend.GetAvailableSlots(c.Params("doctorId"), date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"doctor_id": c.Params("doctorId"),
		"date":      date,
		"slots":     slots,
	})
}
