package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles the caller's notification inbox
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.DELETE("/notifications", h.DeleteNotifications)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns the caller's notifications and marks them read
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	notifications, err := h.notifications.List(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// DeleteNotifications empties the caller's inbox
func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.DeleteAll(c.Request().Context(), current.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications deleted"})
}

// DeleteNotification deletes one notification the caller received
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.DeleteOne(c.Request().Context(), current.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted successfully"})
}
