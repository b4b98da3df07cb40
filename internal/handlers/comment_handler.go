package handlers

import (
	"net/http"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	groupRepository   repositories.GroupRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, groupRepo repositories.GroupRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		groupRepository:   groupRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/group/:name/posts/:id/comments", h.CreateComment)
}

// CreateComment comments on a post of the named group. A post from another
// group is rejected by the repository.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	group, err := memberGroupByName(ctx, h.groupRepository, c.Param("name"), userID)
	if err != nil {
		return err
	}
	comment := &models.Comment{
		Text:    req.CommentText,
		UserID:  userID,
		PostID:  postID,
		GroupID: group.ID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}
