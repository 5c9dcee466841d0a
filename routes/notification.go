package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicbook/clinic-app/controllers"
	"github.com/clinicbook/clinic-app/middleware"
)

// SetupNotificationRoutes configures notification routes
func SetupNotificationRoutes(app *fiber.App) {
	notification := app.Group("/notifications", middleware.Protected())

	notification.Get("/", controllers.GetNotifications)
	notification.Patch("/read-all", controllers.MarkAllNotificationsRead)
	notification.Patch("/:id/read", controllers.MarkNotificationRead)
}
