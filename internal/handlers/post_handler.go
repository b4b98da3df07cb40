package handlers

import (
	"net/http"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/group/:name/posts", h.CreatePost)
	g.POST("/group/:name/posts/:id/delete", h.DeleteGroupPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost publishes a post to a group the current user belongs to
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	group, err := memberGroupByName(ctx, h.groupRepository, c.Param("name"), userID)
	if err != nil {
		return err
	}
	post := &models.Post{Text: req.Text, UserID: userID, GroupID: group.ID}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// DeleteGroupPost deletes a post, and its comments, from the named group
func (h *PostHandler) DeleteGroupPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	group, err := memberGroupByName(ctx, h.groupRepository, c.Param("name"), userID)
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.GroupID != group.ID {
		return apperr.ErrPostNotFound
	}
	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePost deletes a post, and its comments, from whichever group holds it
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := requireMember(ctx, h.groupRepository, post.GroupID, userID); err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
