package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/anonto42/groupnet/backend/pkg/sse"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the notification ledger by polling and by SSE push
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	hub                    *sse.Hub
	heartbeat              time.Duration
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, hub *sse.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		hub:                    hub,
		heartbeat:              25 * time.Second,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.Poll)
	g.GET("/notifications/stream", h.Stream)
}

// Poll returns the notifications newer than ?since= (fractional unix seconds),
// oldest first. Clients pass back the last timestamp they saw.
func (h *NotificationHandler) Poll(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	since := 0.0
	if raw := c.QueryParam("since"); raw != "" {
		since, err = strconv.ParseFloat(raw, 64)
		if err != nil || !models.ValidSince(since) {
			return apperr.InvalidArg("since must be a unix timestamp")
		}
	}

	notifications, err := h.notificationRepository.ListSince(c.Request().Context(), userID, models.SinceFromUnix(since))
	if err != nil {
		return err
	}
	views := make([]models.NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, notifications[i].View())
	}
	return c.JSON(http.StatusOK, views)
}

// Stream pushes each new notification of the current user as an SSE event
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	events, unsubscribe := h.hub.Subscribe(userID)
	defer unsubscribe()

	if err := sse.Serve(c.Request().Context(), c.Response(), events, h.heartbeat); err != nil {
		slog.Debug("notifications: stream closed", "user_id", userID, "error", err)
	}
	return nil
}
