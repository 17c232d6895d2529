package handlers

import (
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	items, err := h.notifications.List(c.UserContext(), middleware.CurrentUser(c).ID, queryLimit(c, 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
