package handlers

import (
	"net/http"

	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the signed-in user's home page
type UserHandler struct {
	userRepository    repositories.UserRepository
	groupRepository   repositories.GroupRepository
	messageRepository repositories.MessageRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, groupRepo repositories.GroupRepository, messageRepo repositories.MessageRepository) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		groupRepository:   groupRepo,
		messageRepository: messageRepo,
	}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/", h.Index)
	g.GET("/index", h.Index)
}

// Index returns the current user, their groups and the unread message badge.
func (h *UserHandler) Index(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	groups, err := h.groupRepository.GetGroupsForUser(ctx, userID)
	if err != nil {
		return err
	}
	unread, err := h.messageRepository.CountUnread(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":                 user.ToCompact(),
		"groups":               groups,
		"unread_message_count": unread,
	})
}
