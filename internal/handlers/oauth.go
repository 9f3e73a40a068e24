package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/logging"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/session"
	"github.com/bookmandala/bookstore/internal/token"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const oauthStateCookie = "oauthState"

type OAuthHandler struct {
	DB          *gorm.DB
	Tokens      *token.Manager
	Sessions    session.Store
	OAuth       *oauth2.Config
	UserInfoURL string
	SuccessURL  string
	FailureURL  string
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *OAuthHandler) Login(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.OAuth.AuthCodeURL(state))
}

func (h *OAuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		log.Warn().Msg("oauth callback with bad state")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	oauthToken, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("oauth code exchange failed")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	infoURL := h.UserInfoURL
	if infoURL == "" {
		infoURL = defaultUserInfoURL
	}
	resp, err := h.OAuth.Client(ctx, oauthToken).Get(infoURL)
	if err != nil {
		log.Error().Err(err).Msg("could not fetch oauth user info")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("oauth user info request rejected")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		log.Error().Err(err).Msg("could not decode oauth user info")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}
	if profile.Email == "" {
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	email := strings.ToLower(profile.Email)
	var user models.User
	err = h.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			FullName: profile.Name,
			Email:    email,
			Avatar:   profile.Picture,
		}
		if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
			log.Error().Err(err).Msg("could not create oauth user")
			return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
		}
		log.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("user registered via google")
	case err != nil:
		log.Error().Err(err).Msg("could not look up oauth user")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	signed, exp, err := h.Tokens.Sign(user.ID, user.FullName, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("could not sign token for oauth user")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}
	if err := h.Sessions.Save(ctx, user.ID, signed, h.Tokens.TTL()); err != nil {
		log.Error().Err(err).Msg("could not persist oauth session")
		return c.Redirect(http.StatusTemporaryRedirect, h.FailureURL)
	}

	c.SetCookie(CreateCookie(auth.CookieName, signed, "/", exp))
	return c.Redirect(http.StatusTemporaryRedirect, h.SuccessURL)
}
