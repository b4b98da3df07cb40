package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles private messages and keeps the unread badge current
type MessageHandler struct {
	messageRepository      repositories.MessageRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository) *MessageHandler {
	return &MessageHandler{
		messageRepository:      messageRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterMessageRoutes registers message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/send_message/:recipient", h.SendMessage)
	g.GET("/messages", h.Messages)
}

// SendMessage sends a private message to the user named by :recipient
func (h *MessageHandler) SendMessage(c echo.Context) error {
	senderID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	recipient, err := h.userRepository.GetUserByUsername(ctx, c.Param("recipient"))
	if err != nil {
		return err
	}
	msg := &models.Message{SenderID: senderID, RecipientID: recipient.ID, Body: req.Message}
	if err := h.messageRepository.CreateMessage(ctx, msg); err != nil {
		return err
	}

	count, err := h.messageRepository.CountUnread(ctx, recipient)
	if err == nil {
		h.notifyUnread(ctx, recipient.ID, count)
	} else {
		slog.Warn("messages: count unread failed", "user_id", recipient.ID, "error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Your message has been sent.",
		"sent":    msg,
	})
}

// Messages marks everything read and lists received messages, newest first
func (h *MessageHandler) Messages(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := h.userRepository.MarkMessagesRead(ctx, user, time.Now()); err != nil {
		return err
	}
	h.notifyUnread(ctx, user.ID, 0)

	msgs, err := h.messageRepository.GetReceived(ctx, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// notifyUnread records the new badge value. The message itself is already
// committed, so a failure here is only logged.
func (h *MessageHandler) notifyUnread(ctx context.Context, userID uint, count int64) {
	if _, err := h.notificationRepository.AddNotification(ctx, userID, models.NotificationUnreadMessageCount, count); err != nil {
		slog.Warn("messages: update unread notification failed", "user_id", userID, "error", err)
	}
}
