package router

import (
	"log/slog"

	"github.com/anonto42/groupnet/backend/internal/handlers"
	"github.com/anonto42/groupnet/backend/internal/middleware"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/sse"
	"github.com/labstack/echo/v4"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Store        *repositories.Store
	Searcher     repositories.Searcher
	Hub          *sse.Hub
	Sessions     *middleware.SessionManager
	PostsPerPage int
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewSQLUserRepository(d.Store)
	groupRepo := repositories.NewSQLGroupRepository(d.Store, d.Searcher)
	postRepo := repositories.NewSQLPostRepository(d.Store)
	commentRepo := repositories.NewSQLCommentRepository(d.Store)
	messageRepo := repositories.NewSQLMessageRepository(d.Store)
	notificationRepo := repositories.NewSQLNotificationRepository(d.Store)

	// --- Unprotected routes for authentication ---
	public := e.Group("")
	handlers.NewAuthHandler(userRepo, d.Sessions).RegisterAuthRoutes(public)

	// --- Protected routes (require a session) ---
	app := e.Group("", d.Sessions.RequireSession())

	handlers.NewUserHandler(userRepo, groupRepo, messageRepo).RegisterUserRoutes(app)
	handlers.NewGroupHandler(groupRepo, postRepo, commentRepo, userRepo).RegisterGroupRoutes(app)
	handlers.NewPostHandler(postRepo, groupRepo).RegisterPostRoutes(app)
	handlers.NewCommentHandler(commentRepo, groupRepo).RegisterCommentRoutes(app)
	handlers.NewMessageHandler(messageRepo, userRepo, notificationRepo).RegisterMessageRoutes(app)
	handlers.NewSearchHandler(groupRepo, d.PostsPerPage).RegisterSearchRoutes(app)
	handlers.NewNotificationHandler(notificationRepo, d.Hub).RegisterNotificationRoutes(app)

	slog.Info("router: all routes configured", "routes", len(e.Routes()))
}
