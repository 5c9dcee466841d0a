package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the authenticated user's notifications,
// newest first.
func GetNotifications(c *fiber.Ctx) error {
	notifications, err := Backend.GetNotifications(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notifications)
}

// MarkNotificationRead marks a single notification as read
func MarkNotificationRead(c *fiber.Ctx) error {
	if err := Backend.MarkNotificationRead(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every notification of the
// authenticated user as read.
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := Backend.MarkAllNotificationsRead(currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
