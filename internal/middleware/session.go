package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie is the name of the cookie carrying the signed session.
	SessionCookie = "session"
	// ContextKeyUser is where RequireSession stores the *models.SessionClaims.
	ContextKeyUser = "user"
)

// SessionManager issues and verifies HS256-signed session tokens. The token travels in
// an HttpOnly cookie; API clients may send it as a Bearer token instead.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a session for user and sets the cookie. With remember the cookie
// outlives the browser session.
func (m *SessionManager) Issue(c echo.Context, user *models.User, remember bool) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", err
	}

	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = now.Add(m.ttl)
		cookie.MaxAge = int(m.ttl.Seconds())
	}
	c.SetCookie(cookie)
	return token, nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Parse verifies token and returns its claims.
func (m *SessionManager) Parse(token string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("Unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("Invalid session")
	}
	return claims, nil
}

// RequireSession rejects requests without a valid session and stores the claims
// under ContextKeyUser.
func (m *SessionManager) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return apperr.ErrNotAuthenticated
			}
			claims, err := m.Parse(token)
			if err != nil {
				return err
			}
			c.Set(ContextKeyUser, claims)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// UserIDFromContext returns the id of the authenticated user.
func UserIDFromContext(c echo.Context) (uint, error) {
	claims, ok := c.Get(ContextKeyUser).(*models.SessionClaims)
	if !ok || claims.UserID == 0 {
		return 0, apperr.ErrNotAuthenticated
	}
	return claims.UserID, nil
}
