package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/controllers"
	"github.com/clinicbook/clinic-app/middleware"
)

// SetupDoctorRoutes configures doctor discovery, profile and
// availability routes.
func SetupDoctorRoutes(app *fiber.App) {
	doctor := app.Group("/doctors")

	// Public discovery routes
	doctor.Get("/", controllers.ListDoctors)
	doctor.Get("/:id", controllers.GetDoctorProfile)
	doctor.Get("/:doctorId/slots", controllers.GetAvailableSlots)

	// Doctor self-service
	doctor.Put("/me/profile", middleware.Protected(), middleware.RequireRole("DOCTOR"), controllers.UpdateDoctorProfile)
	doctor.Put("/me/availability", middleware.Protected(), middleware.RequireRole("DOCTOR"), controllers.SetAvailability)
	doctor.Post("/me/documents", middleware.Protected(), middleware.RequireRole("DOCTOR"), controllers.UploadVerificationDocument)
}
