package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/backend"
	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/utils"
)

// ListDoctors returns all verified doctors
func ListDoctors(c *fiber.Ctx) error {
	doctors, err := Backend.ListDoctors()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(doctors)
}

// GetDoctorProfile returns a doctor's profile by user ID
func GetDoctorProfile(c *fiber.Ctx) error {
	profile, err := Backend.GetDoctorProfile(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateDoctorProfile updates the authenticated doctor's profile
func UpdateDoctorProfile(c *fiber.Ctx) error {
	input := new(backend.DoctorProfileInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	profile, err := Backend.UpdateDoctorProfile(currentUserID(c), *input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// SetAvailability replaces the authenticated doctor's weekly schedule
// and blocked dates.
func SetAvailability(c *fiber.Ctx) error {
	type AvailabilityInput struct {
		WeeklySchedule models.WeeklySchedule `json:"weekly_schedule"`
		BlockedDates   []string              `json:"blocked_dates"`
	}
	input := new(AvailabilityInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := Backend.SetDoctorAvailability(currentUserID(c), input.WeeklySchedule, input.BlockedDates); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Availability updated"})
}

// VerifyDoctor lets an admin approve, reject or request more info on a
// doctor's verification.
func VerifyDoctor(c *fiber.Ctx) error {
	type VerifyInput struct {
		Status models.VerificationStatus `json:"status"`
		Notes  string                    `json:"notes"`
	}
	input := new(VerifyInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	profile, err := Backend.VerifyDoctor(c.Params("id"), input.Status, input.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UploadVerificationDocument uploads a license or certificate to
// Cloudinary and appends its URL to the doctor's profile.
func UploadVerificationDocument(c *fiber.Ctx) error {
	doctorID := currentUserID(c)

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document file is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	publicID := fmt.Sprintf("%s-%s", doctorID, fileHeader.Filename)
	url, err := utils.UploadToCloudinary(file, publicID, "doctor-documents")
	if err != nil {
		log.Printf("Cloudinary upload failed for doctor %s: %v", doctorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload document",
		})
	}

	profile, err := Backend.GetDoctorProfile(doctorID)
	if err != nil {
		return fail(c, err)
	}
	input := backend.DoctorProfileInput{
		Specialty:         profile.Specialty,
		LicenseNumber:     profile.LicenseNumber,
		YearsOfExperience: profile.YearsOfExperience,
		Bio:               profile.Bio,
		Location:          profile.Location,
		Languages:         profile.Languages,
		ConsultationFee:   profile.ConsultationFee,
		DocumentURLs:      append(profile.DocumentURLs, url),
	}
	profile, err = Backend.UpdateDoctorProfile(doctorID, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"url":     url,
		"profile": profile,
	})
}
