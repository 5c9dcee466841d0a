package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/controllers"
	"github.com/clinicbook/clinic-app/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/appointments", middleware.Protected())

	appointment.Get("/", controllers.GetAppointments)
	appointment.Post("/", middleware.RequireRole("PATIENT", "ADMIN"), controllers.CreateAppointment)
	appointment.Post("/:id/cancel", controllers.CancelAppointment)
	appointment.Post("/:id/confirm", middleware.RequireRole("DOCTOR"), controllers.ConfirmAppointment)
	appointment.Post("/:id/reschedule", controllers.RescheduleAppointment)
	appointment.Post("/:id/complete", middleware.RequireRole("DOCTOR"), controllers.CompleteAppointment)
	appointment.Post("/:id/no-show", middleware.RequireRole("DOCTOR"), controllers.MarkNoShow)
}
