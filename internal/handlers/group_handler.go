package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles group browsing, creation and membership
type GroupHandler struct {
	groupRepository   repositories.GroupRepository
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *GroupHandler {
	return &GroupHandler{
		groupRepository:   groupRepo,
		postRepository:    postRepo,
		commentRepository: commentRepo,
		userRepository:    userRepo,
	}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("/explore", h.Explore)
	g.GET("/my_groups", h.MyGroups)
	g.POST("/create_group", h.CreateGroup)
	g.GET("/group/:name", h.GetGroup)
	g.POST("/add_member", h.AddMember)
}

// PostView is a post with its comments, oldest comment first.
type PostView struct {
	models.Post
	Comments []models.Comment `json:"comments"`
}

func (h *GroupHandler) Explore(c echo.Context) error {
	groups, err := h.groupRepository.GetGroups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

func (h *GroupHandler) MyGroups(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	groups, err := h.groupRepository.GetGroupsForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// CreateGroup creates a group with the current user as its first member
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	group := &models.Group{Name: req.Name}
	if err := h.groupRepository.CreateGroup(c.Request().Context(), group, userID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Congratulations, you have now created a new group!",
		"group":   group,
	})
}

// GetGroup returns a group page: posts newest first with their comments, and every
// user so members can invite others. Only members may see it.
func (h *GroupHandler) GetGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	group, err := memberGroupByName(ctx, h.groupRepository, c.Param("name"), userID)
	if err != nil {
		return err
	}
	posts, err := h.postRepository.GetPostsByGroupID(ctx, group.ID)
	if err != nil {
		return err
	}
	comments, err := h.commentRepository.GetCommentsByGroupID(ctx, group.ID)
	if err != nil {
		return err
	}
	users, err := h.userRepository.GetUsers(ctx)
	if err != nil {
		return err
	}

	byPost := make(map[uint][]models.Comment, len(posts))
	for _, cm := range comments {
		byPost[cm.PostID] = append(byPost[cm.PostID], cm)
	}
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		cs := byPost[p.ID]
		if cs == nil {
			cs = []models.Comment{}
		}
		views = append(views, PostView{Post: p, Comments: cs})
	}
	compact := make([]models.UserCompact, 0, len(users))
	for i := range users {
		compact = append(compact, users[i].ToCompact())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"group": group,
		"posts": views,
		"users": compact,
	})
}

// AddMember adds ?userId= to ?groupId=. The acting user must already be a member.
func (h *GroupHandler) AddMember(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	var req models.AddMemberRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return apperr.InvalidArg("userId and groupId must be integers")
	}
	if err := validate.Struct(req); err != nil {
		return apperr.InvalidArg(validationMessage(err))
	}
	ctx := c.Request().Context()

	group, err := h.groupRepository.GetGroupByID(ctx, req.GroupID)
	if err != nil {
		return err
	}
	if err := requireMember(ctx, h.groupRepository, group.ID, userID); err != nil {
		return err
	}
	if err := h.groupRepository.AddMember(ctx, group.ID, req.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"group": group, "user_id": req.UserID})
}

func requireMember(ctx context.Context, groups repositories.GroupRepository, groupID, userID uint) error {
	ok, err := groups.HasMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotGroupMember
	}
	return nil
}

// memberGroupByName loads the named group, failing unless userID belongs to it.
func memberGroupByName(ctx context.Context, groups repositories.GroupRepository, name string, userID uint) (*models.Group, error) {
	group, err := groups.GetGroupByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, groups, group.ID, userID); err != nil {
		return nil, err
	}
	return group, nil
}
