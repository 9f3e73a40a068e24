package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
)

type ReviewHandler struct {
	DB *gorm.DB
}

type reviewBody struct {
	Rate   int    `json:"rate" form:"rate"`
	Review string `json:"review" form:"review"`
}

type reviewWithAuthor struct {
	ID        uint      `json:"ID"`
	BookID    uint      `json:"bookId"`
	UserID    uint      `json:"userId"`
	Rate      int       `json:"rate"`
	Review    string    `json:"review"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"CreatedAt"`
}

// AddReview stores one rating per user and book pair.
func (h *ReviewHandler) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var body reviewBody
	if err := c.Bind(&body); err != nil {
		return response.Error(c, apperr.Invalid("invalid request body"))
	}
	if body.Rate < 1 || body.Rate > 5 {
		return response.Error(c, apperr.Invalid("rate must be between 1 and 5"))
	}
	if strings.TrimSpace(body.Review) == "" {
		return response.Error(c, apperr.Invalid("review text is required"))
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}

	var existing models.Review
	err = h.DB.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		return response.Error(c, apperr.Conflict("you have already reviewed this book"))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.Error(c, apperr.Internal(err, "could not check existing review"))
	}

	review := models.Review{
		UserID: userID,
		BookID: bookID,
		Rate:   body.Rate,
		Review: body.Review,
	}
	if err := h.DB.WithContext(ctx).Create(&review).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not save review"))
	}
	return response.Success(c, review, "review added successfully")
}

func (h *ReviewHandler) GetReviewsForBook(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var reviews []reviewWithAuthor
	err = h.DB.WithContext(ctx).Model(&models.Review{}).
		Select("reviews.id, reviews.book_id, reviews.user_id, reviews.rate, reviews.review, reviews.created_at, users.full_name, users.email, users.avatar").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.book_id = ?", bookID).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return response.Error(c, apperr.Internal(err, "could not list reviews"))
	}
	if reviews == nil {
		reviews = []reviewWithAuthor{}
	}
	return response.Success(c, reviews, "reviews fetched successfully")
}

func (h *ReviewHandler) EditReview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var body reviewBody
	if err := c.Bind(&body); err != nil {
		return response.Error(c, apperr.Invalid("invalid request body"))
	}

	var review models.Review
	err = h.DB.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("review not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load review"))
	}

	if body.Rate != 0 {
		if body.Rate < 1 || body.Rate > 5 {
			return response.Error(c, apperr.Invalid("rate must be between 1 and 5"))
		}
		review.Rate = body.Rate
	}
	if strings.TrimSpace(body.Review) != "" {
		review.Review = body.Review
	}

	if err := h.DB.WithContext(ctx).Save(&review).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update review"))
	}
	return response.Success(c, review, "review updated successfully")
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var review models.Review
	err = h.DB.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("review not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load review"))
	}

	if err := h.DB.WithContext(ctx).Delete(&review).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not delete review"))
	}
	return response.Success(c, review, "review deleted successfully")
}
