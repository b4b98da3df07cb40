package handlers

import (
	"net/http"

	"github.com/anonto42/groupnet/backend/internal/middleware"
	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration and the session lifecycle
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *middleware.SessionManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
}

// Register creates a local account. Duplicate usernames and emails are rejected
// before anything is written.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	taken, err := h.userRepository.UsernameExists(ctx, req.Username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrUsernameTaken
	}
	taken, err = h.userRepository.EmailExists(ctx, req.Email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrEmailTaken
	}

	user := &models.User{Username: req.Username, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "Failed to hash password", err)
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Congratulations, you are now a registered user!",
		"user":    user.ToCompact(),
	})
}

// Login verifies the credentials and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return apperr.ErrInvalidCredentials
		}
		return err
	}
	if !user.CheckPassword(req.Password) {
		return apperr.ErrInvalidCredentials
	}

	token, err := h.sessions.Issue(c, user, req.RememberMe)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "Failed to sign session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.ToCompact(), "token": token})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.NoContent(http.StatusNoContent)
}
