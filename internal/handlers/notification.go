package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/tsubakihara/task-management-backend/internal/errors"
	"github.com/tsubakihara/task-management-backend/internal/middleware"
	"github.com/tsubakihara/task-management-backend/internal/services"
)

// NotificationHandler coordinates deadline-reminder endpoints.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// Notify handles POST /email-notification.
func (h *NotificationHandler) Notify(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	count, err := h.notificationService.NotifyDeadlines(userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Reminder emails sent",
		"notified_tasks": count,
	})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationsDisabled):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrMailDelivery):
		apierrors.ExternalService(c, services.ErrMailDelivery.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
