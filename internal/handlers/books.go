package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/uploader"
	"github.com/bookmandala/bookstore/internal/util"
)

type BookHandler struct {
	DB      *gorm.DB
	Uploads uploader.Uploader
}

func validLanguage(l string) bool {
	switch l {
	case "English", "Nepali", "Hindi":
		return true
	}
	return false
}

func (h *BookHandler) AddBook(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	title := strings.TrimSpace(c.FormValue("title"))
	author := strings.TrimSpace(c.FormValue("author"))
	priceRaw := strings.TrimSpace(c.FormValue("price"))
	quantityRaw := strings.TrimSpace(c.FormValue("quantity"))

	if title == "" || author == "" || priceRaw == "" || quantityRaw == "" {
		return response.Error(c, apperr.Invalid("title, author, price and quantity are required"))
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || price < 0 {
		return response.Error(c, apperr.Invalid("price must be a non-negative number"))
	}
	quantity, err := strconv.Atoi(quantityRaw)
	if err != nil || quantity < 0 {
		return response.Error(c, apperr.Invalid("quantity must be a non-negative integer"))
	}

	language := strings.TrimSpace(c.FormValue("language"))
	if language == "" {
		language = "English"
	}
	if !validLanguage(language) {
		return response.Error(c, apperr.Invalid("language must be one of English, Nepali, Hindi"))
	}

	var existing models.Book
	err = h.DB.WithContext(ctx).Where("title = ? AND author = ?", title, author).First(&existing).Error
	if err == nil {
		return response.Error(c, apperr.Conflict("book already exists with title %q and author %q", title, author))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.Error(c, apperr.Internal(err, "could not check existing book"))
	}

	coverFile, err := c.FormFile("coverImage")
	if err != nil {
		return response.Error(c, apperr.Invalid("cover image is required"))
	}
	coverURL, err := uploadFormFile(ctx, h.Uploads, coverFile)
	if err != nil {
		return response.Error(c, err)
	}

	book := models.Book{
		Title:            title,
		Author:           author,
		Price:            price,
		Quantity:         quantity,
		CoverImage:       coverURL,
		DescriptionTitle: c.FormValue("descriptionTitle"),
		Description:      c.FormValue("description"),
		PageCount:        parseIntDefault(c.FormValue("pageCount"), 0),
		Weight:           c.FormValue("weight"),
		ISBN:             c.FormValue("ISBN"),
		Language:         language,
		OwnerID:          userID,
	}
	if err := h.DB.WithContext(ctx).Create(&book).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not create book"))
	}

	return response.Success(c, book, "book added successfully")
}

func (h *BookHandler) GetAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Paginate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Book{}).Count(&total).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not count books"))
	}

	var books []models.Book
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not list books"))
	}

	return response.Success(c, echo.Map{
		"books": books,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	}, "books fetched successfully")
}

func (h *BookHandler) GetBookByID(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}
	return response.Success(c, book, "book fetched successfully")
}

// SearchBook matches a case-insensitive substring on title or author, and
// the exact price when the query parses as a number.
func (h *BookHandler) SearchBook(c echo.Context) error {
	ctx := c.Request().Context()

	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return response.Error(c, apperr.Invalid("query is required"))
	}

	pattern := "%" + strings.ToLower(query) + "%"
	tx := h.DB.WithContext(ctx).Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	if price, err := strconv.ParseFloat(query, 64); err == nil {
		tx = tx.Or("price = ?", price)
	}

	var books []models.Book
	if err := tx.Find(&books).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "search failed"))
	}
	if len(books) == 0 {
		return response.Success(c, []models.Book{}, "no result for "+query)
	}
	return response.Success(c, books, "books fetched successfully")
}

func (h *BookHandler) UpdateBook(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}

	if v := strings.TrimSpace(c.FormValue("title")); v != "" {
		book.Title = v
	}
	if v := strings.TrimSpace(c.FormValue("author")); v != "" {
		book.Author = v
	}
	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return response.Error(c, apperr.Invalid("price must be a non-negative number"))
		}
		book.Price = price
	}
	if v := strings.TrimSpace(c.FormValue("quantity")); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil || quantity < 0 {
			return response.Error(c, apperr.Invalid("quantity must be a non-negative integer"))
		}
		book.Quantity = quantity
	}
	if v := c.FormValue("descriptionTitle"); v != "" {
		book.DescriptionTitle = v
	}
	if v := c.FormValue("description"); v != "" {
		book.Description = v
	}
	if v := c.FormValue("pageCount"); v != "" {
		book.PageCount = parseIntDefault(v, book.PageCount)
	}
	if v := c.FormValue("weight"); v != "" {
		book.Weight = v
	}
	if v := c.FormValue("ISBN"); v != "" {
		book.ISBN = v
	}
	if v := strings.TrimSpace(c.FormValue("language")); v != "" {
		if !validLanguage(v) {
			return response.Error(c, apperr.Invalid("language must be one of English, Nepali, Hindi"))
		}
		book.Language = v
	}

	if coverFile, err := c.FormFile("coverImage"); err == nil {
		coverURL, err := uploadFormFile(ctx, h.Uploads, coverFile)
		if err != nil {
			return response.Error(c, err)
		}
		book.CoverImage = coverURL
	}

	if err := h.DB.WithContext(ctx).Save(&book).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not update book"))
	}
	return response.Success(c, book, "book details updated successfully")
}

// DeleteBook refuses to delete a book referenced by any cart line; genre
// memberships, reviews and currency prices are removed with the book.
func (h *BookHandler) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inCarts int64
		if err := tx.Model(&models.CartLine{}).Where("book_id = ?", bookID).Count(&inCarts).Error; err != nil {
			return apperr.Internal(err, "could not check cart references")
		}
		if inCarts > 0 {
			return apperr.Conflict("book is in %d cart(s) and cannot be deleted", inCarts)
		}

		if err := tx.Exec("DELETE FROM genre_books WHERE book_id = ?", bookID).Error; err != nil {
			return apperr.Internal(err, "could not detach book from genres")
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&models.Review{}).Error; err != nil {
			return apperr.Internal(err, "could not remove book reviews")
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&models.Currency{}).Error; err != nil {
			return apperr.Internal(err, "could not remove book prices")
		}
		if err := tx.Delete(&models.Book{}, bookID).Error; err != nil {
			return apperr.Internal(err, "could not delete book")
		}
		return nil
	})
	if txErr != nil {
		return response.Error(c, txErr)
	}

	return response.Success(c, book, "book deleted successfully")
}
