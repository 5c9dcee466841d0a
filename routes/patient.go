package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/controllers"
	"github.com/clinicbook/clinic-app/middleware"
)

// SetupPatientRoutes configures patient profile routes
func SetupPatientRoutes(app *fiber.App) {
	patient := app.Group("/patients", middleware.Protected())

	patient.Get("/:id", controllers.GetPatientProfile)
	patient.Put("/me/profile", middleware.RequireRole("PATIENT"), controllers.UpdatePatientProfile)
}
