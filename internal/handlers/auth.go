package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/hash"
	"github.com/bookmandala/bookstore/internal/logging"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/session"
	"github.com/bookmandala/bookstore/internal/token"
	"github.com/bookmandala/bookstore/internal/uploader"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Manager
	Sessions session.Store
	Uploads  uploader.Uploader
}

func validGender(g string) bool {
	switch g {
	case "Male", "Female", "Others":
		return true
	}
	return false
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx)

	fullname := strings.TrimSpace(c.FormValue("fullname"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	phoneNumber := strings.TrimSpace(c.FormValue("phoneNumber"))
	dob := strings.TrimSpace(c.FormValue("dob"))
	gender := strings.TrimSpace(c.FormValue("gender"))
	password := c.FormValue("password")

	for _, field := range []string{fullname, email, phoneNumber, dob, gender, password} {
		if field == "" {
			return response.Error(c, apperr.Invalid("all fields are required"))
		}
	}
	if !validGender(gender) {
		return response.Error(c, apperr.Invalid("gender must be one of Male, Female, Others"))
	}
	if _, err := time.Parse("2006-01-02", dob); err != nil {
		return response.Error(c, apperr.Invalid("dob must be a date in YYYY-MM-DD form"))
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return response.Error(c, apperr.Conflict("user already exists with %s", email))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.Error(c, apperr.Internal(err, "could not check existing user"))
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return response.Error(c, apperr.Invalid("avatar file is required"))
	}
	avatarURL, err := uploadFormFile(ctx, h.Uploads, avatarFile)
	if err != nil {
		return response.Error(c, err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return response.Error(c, apperr.Internal(err, "could not hash password"))
	}

	user := models.User{
		FullName:     fullname,
		Email:        email,
		PhoneNumber:  phoneNumber,
		DOB:          dob,
		Gender:       gender,
		PasswordHash: &pwHash,
		Avatar:       avatarURL,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not create user"))
	}

	l.Info().Uint("user_id", user.ID).Msg("user registered")
	return response.Success(c, user, "user registered successfully")
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperr.Invalid("invalid body"))
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, apperr.Invalid("email and password are required"))
	}

	var user models.User
	err := h.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("no user with that email"))
		}
		return response.Error(c, apperr.Internal(err, "could not look up user"))
	}

	if user.PasswordHash == nil || !hash.CheckPassword(*user.PasswordHash, req.Password) {
		l.Warn().Uint("user_id", user.ID).Msg("login failed")
		return response.Error(c, apperr.Unauthorized("invalid password"))
	}

	signed, exp, err := h.Tokens.Sign(user.ID, user.FullName, user.Email)
	if err != nil {
		return response.Error(c, apperr.Internal(err, "could not create token"))
	}
	if err := h.Sessions.Save(ctx, user.ID, signed, h.Tokens.TTL()); err != nil {
		return response.Error(c, apperr.Internal(err, "could not persist session"))
	}

	c.SetCookie(CreateCookie(auth.CookieName, signed, "/", exp))
	l.Info().Uint("user_id", user.ID).Msg("login successful")
	return response.Success(c, echo.Map{"user": user, "token": signed}, "login successful")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	if err := h.Sessions.Delete(ctx, userID); err != nil {
		return response.Error(c, apperr.Internal(err, "could not clear session"))
	}
	c.SetCookie(DeleteCookie(auth.CookieName, "/"))
	return response.Success(c, nil, "logged out")
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("not logged in"))
	}
	return response.Success(c, user, "user retrieved successfully")
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("not logged in"))
	}

	var req struct {
		FullName        string `json:"fullname" form:"fullname"`
		PhoneNumber     string `json:"phone_number" form:"phoneNumber"`
		DOB             string `json:"dob" form:"dob"`
		Gender          string `json:"gender" form:"gender"`
		ShippingAddress string `json:"shipping_address" form:"shippingAddress"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperr.Invalid("invalid body"))
	}

	if req.FullName != "" {
		user.FullName = strings.TrimSpace(req.FullName)
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	}
	if req.DOB != "" {
		if _, err := time.Parse("2006-01-02", req.DOB); err != nil {
			return response.Error(c, apperr.Invalid("dob must be a date in YYYY-MM-DD form"))
		}
		user.DOB = req.DOB
	}
	if req.Gender != "" {
		if !validGender(req.Gender) {
			return response.Error(c, apperr.Invalid("gender must be one of Male, Female, Others"))
		}
		user.Gender = req.Gender
	}
	if req.ShippingAddress != "" {
		user.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update profile"))
	}
	return response.Success(c, user, "profile updated successfully")
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("not logged in"))
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperr.Invalid("invalid body"))
	}
	if req.NewPassword == "" {
		return response.Error(c, apperr.Invalid("new password is required"))
	}
	if user.PasswordHash == nil {
		return response.Error(c, apperr.Invalid("password login is not enabled for this account"))
	}
	if !hash.CheckPassword(*user.PasswordHash, req.OldPassword) {
		return response.Error(c, apperr.Unauthorized("invalid password"))
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return response.Error(c, apperr.Internal(err, "could not hash password"))
	}
	if err := h.DB.WithContext(ctx).Model(&user).Update("password_hash", pwHash).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update password"))
	}
	return response.Success(c, nil, "password changed successfully")
}

func (h *AuthHandler) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, apperr.Unauthorized("not logged in"))
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return response.Error(c, apperr.Invalid("avatar file is required"))
	}
	avatarURL, err := uploadFormFile(ctx, h.Uploads, avatarFile)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.DB.WithContext(ctx).Model(&user).Update("avatar", avatarURL).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update avatar"))
	}
	user.Avatar = avatarURL
	return response.Success(c, user, "avatar updated successfully")
}
