package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/session"
	"github.com/bookmandala/bookstore/internal/token"
)

const CookieName = "authToken"

type Middleware struct {
	DB       *gorm.DB
	Tokens   *token.Manager
	Sessions session.Store
}

// RequireAuth gates a route on a valid token. The token is read from the
// authToken cookie, falling back to a bearer header. Expired and invalid
// tokens produce distinct unauthorized responses, and the token must still
// match the persisted session so logout revokes it immediately.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return response.Error(c, apperr.Unauthorized("missing credential"))
		}

		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				return response.Error(c, apperr.Unauthorized("token expired"))
			}
			return response.Error(c, apperr.Unauthorized("invalid token"))
		}

		ctx := c.Request().Context()
		current, err := m.Sessions.Get(ctx, claims.UserID)
		if err != nil || current != raw {
			return response.Error(c, apperr.Unauthorized("session expired"))
		}

		var user models.User
		if err := m.DB.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Error(c, apperr.Unauthorized("user no longer exists"))
			}
			return response.Error(c, apperr.Internal(err, "could not load user"))
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func CurrentUser(c echo.Context) (models.User, bool) {
	user, ok := c.Get("user").(models.User)
	return user, ok
}

func CurrentUserID(c echo.Context) uint {
	id, _ := c.Get("userID").(uint)
	return id
}
