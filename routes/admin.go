package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/controllers"
	"github.com/clinicbook/clinic-app/middleware"
)

// SetupAdminRoutes configures admin-only routes
func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.Protected(), middleware.RequireRole("ADMIN"))

	admin.Post("/doctors/:id/verify", controllers.VerifyDoctor)
	admin.Get("/audit", controllers.AuditData)
}
