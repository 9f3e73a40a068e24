package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/uploader"
)

type GenreHandler struct {
	DB      *gorm.DB
	Uploads uploader.Uploader
}

// CreateGenre attaches a book to the genre with the given title, creating
// the genre first if no genre with that title exists yet.
func (h *GenreHandler) CreateGenre(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return response.Error(c, apperr.Invalid("genre title is required"))
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}

	var iconURL string
	if iconFile, err := c.FormFile("icon"); err == nil {
		iconURL, err = uploadFormFile(ctx, h.Uploads, iconFile)
		if err != nil {
			return response.Error(c, err)
		}
	}

	var genre models.Genre
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("title = ?", title).First(&genre).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if iconURL == "" {
				return apperr.Invalid("genre icon is required")
			}
			genre = models.Genre{Title: title, Icon: iconURL, OwnerID: userID}
			if err := tx.Create(&genre).Error; err != nil {
				return apperr.Internal(err, "could not create genre")
			}
		case err != nil:
			return apperr.Internal(err, "could not look up genre")
		}

		var attached int64
		if err := tx.Table("genre_books").
			Where("genre_id = ? AND book_id = ?", genre.ID, book.ID).
			Count(&attached).Error; err != nil {
			return apperr.Internal(err, "could not check genre membership")
		}
		if attached > 0 {
			return nil
		}

		if err := tx.Model(&genre).Association("Books").Append(&book); err != nil {
			return apperr.Internal(err, "could not attach book to genre")
		}
		return nil
	})
	if txErr != nil {
		return response.Error(c, txErr)
	}

	return response.Success(c, genre, "book added to genre successfully")
}

func (h *GenreHandler) GetAllGenres(c echo.Context) error {
	ctx := c.Request().Context()

	var genres []models.Genre
	if err := h.DB.WithContext(ctx).Preload("Books").Order("title ASC").Find(&genres).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not list genres"))
	}
	return response.Success(c, genres, "genres fetched successfully")
}

func (h *GenreHandler) GetGenre(c echo.Context) error {
	ctx := c.Request().Context()

	genreID, err := parseIDParam(c, "genreId")
	if err != nil {
		return response.Error(c, err)
	}

	var genre models.Genre
	if err := h.DB.WithContext(ctx).Preload("Books").First(&genre, genreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("genre not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load genre"))
	}
	return response.Success(c, genre, "genre fetched successfully")
}

func (h *GenreHandler) UpdateGenreIcon(c echo.Context) error {
	ctx := c.Request().Context()

	genreID, err := parseIDParam(c, "genreId")
	if err != nil {
		return response.Error(c, err)
	}

	iconFile, err := c.FormFile("icon")
	if err != nil {
		return response.Error(c, apperr.Invalid("icon file is required"))
	}
	iconURL, err := uploadFormFile(ctx, h.Uploads, iconFile)
	if err != nil {
		return response.Error(c, err)
	}

	var genre models.Genre
	if err := h.DB.WithContext(ctx).First(&genre, genreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("genre not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load genre"))
	}

	genre.Icon = iconURL
	if err := h.DB.WithContext(ctx).Save(&genre).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update genre"))
	}
	return response.Success(c, genre, "genre icon updated successfully")
}

func (h *GenreHandler) UpdateGenreTitle(c echo.Context) error {
	ctx := c.Request().Context()

	genreID, err := parseIDParam(c, "genreId")
	if err != nil {
		return response.Error(c, err)
	}

	var body struct {
		Title string `json:"title" form:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Error(c, apperr.Invalid("invalid request body"))
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return response.Error(c, apperr.Invalid("title is required"))
	}

	var genre models.Genre
	if err := h.DB.WithContext(ctx).First(&genre, genreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("genre not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load genre"))
	}

	var clash int64
	if err := h.DB.WithContext(ctx).Model(&models.Genre{}).
		Where("title = ? AND id <> ?", title, genre.ID).
		Count(&clash).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not check genre title"))
	}
	if clash > 0 {
		return response.Error(c, apperr.Conflict("genre %q already exists", title))
	}

	genre.Title = title
	if err := h.DB.WithContext(ctx).Save(&genre).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update genre"))
	}
	return response.Success(c, genre, "genre title updated successfully")
}

func (h *GenreHandler) DeleteGenre(c echo.Context) error {
	ctx := c.Request().Context()

	genreID, err := parseIDParam(c, "genreId")
	if err != nil {
		return response.Error(c, err)
	}

	var genre models.Genre
	if err := h.DB.WithContext(ctx).First(&genre, genreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("genre not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load genre"))
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&genre).Association("Books").Clear(); err != nil {
			return apperr.Internal(err, "could not detach books from genre")
		}
		if err := tx.Delete(&genre).Error; err != nil {
			return apperr.Internal(err, "could not delete genre")
		}
		return nil
	})
	if txErr != nil {
		return response.Error(c, txErr)
	}
	return response.Success(c, genre, "genre deleted successfully")
}
