package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/admin/notifications. Unread entries
// come first, newest first within each group.
// @Summary List admin notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} models.Notification
// @Security BearerAuth
// @Router /admin/notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	notifs, err := s.notificationService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifs)
}

// GetNotificationUnreadCount handles GET /api/admin/notifications/unread-count
func (s *Server) GetNotificationUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles PUT /api/admin/notifications/:id/read.
// Marking an already-read notification is a no-op.
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/notifications/{id}/read [put]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification lue"})
}

// MarkAllNotificationsRead handles PUT /api/admin/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.UserContext()); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Toutes les notifications sont lues"})
}
