package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications. Viewing the inbox marks
// every notification read; the response still carries the pre-view flags.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	notifications, err := s.notificationService.List(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifications)
}

// ClearNotifications handles DELETE /api/notifications
func (s *Server) ClearNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.Clear(c.Context(), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications deleted successfully"})
}
