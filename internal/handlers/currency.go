package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
)

type CurrencyHandler struct {
	DB *gorm.DB
}

type currencyBody struct {
	CurrencyType string  `json:"currencyType" form:"currencyType"`
	PriceNPR     float64 `json:"priceNPR" form:"priceNPR"`
	PriceUSD     float64 `json:"priceUSD" form:"priceUSD"`
}

func validCurrency(t string) bool {
	switch t {
	case "NPR", "USD":
		return true
	}
	return false
}

// SetPrice upserts the per-currency price record for a book.
func (h *CurrencyHandler) SetPrice(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var body currencyBody
	if err := c.Bind(&body); err != nil {
		return response.Error(c, apperr.Invalid("invalid request body"))
	}
	currencyType := strings.ToUpper(strings.TrimSpace(body.CurrencyType))
	if currencyType == "" {
		currencyType = "NPR"
	}
	if !validCurrency(currencyType) {
		return response.Error(c, apperr.Invalid("currencyType must be NPR or USD"))
	}
	if body.PriceNPR < 0 || body.PriceUSD < 0 {
		return response.Error(c, apperr.Invalid("prices must be non-negative"))
	}

	var book models.Book
	if err := h.DB.WithContext(ctx).First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("book not found"))
		}
		return response.Error(c, apperr.Internal(err, "could not load book"))
	}

	var price models.Currency
	err = h.DB.WithContext(ctx).Where("book_id = ?", bookID).First(&price).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		price = models.Currency{
			BookID:       bookID,
			CurrencyType: currencyType,
			PriceNPR:     body.PriceNPR,
			PriceUSD:     body.PriceUSD,
		}
		if err := h.DB.WithContext(ctx).Create(&price).Error; err != nil {
			return response.Error(c, apperr.Internal(err, "could not save price"))
		}
	case err != nil:
		return response.Error(c, apperr.Internal(err, "could not load price"))
	default:
		price.CurrencyType = currencyType
		price.PriceNPR = body.PriceNPR
		price.PriceUSD = body.PriceUSD
		if err := h.DB.WithContext(ctx).Save(&price).Error; err != nil {
			return response.Error(c, apperr.Internal(err, "could not update price"))
		}
	}

	return response.Success(c, price, "price saved successfully")
}

// GetPrice returns the stored price for a book, narrowed to one currency
// when the "currency" query parameter is present.
func (h *CurrencyHandler) GetPrice(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return response.Error(c, err)
	}

	var price models.Currency
	if err := h.DB.WithContext(ctx).Where("book_id = ?", bookID).First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, apperr.NotFound("no price set for this book"))
		}
		return response.Error(c, apperr.Internal(err, "could not load price"))
	}

	currency := strings.ToUpper(strings.TrimSpace(c.QueryParam("currency")))
	if currency == "" {
		return response.Success(c, price, "price fetched successfully")
	}
	if !validCurrency(currency) {
		return response.Error(c, apperr.Invalid("currency must be NPR or USD"))
	}

	amount := price.PriceNPR
	if currency == "USD" {
		amount = price.PriceUSD
	}
	return response.Success(c, echo.Map{
		"bookId":   price.BookID,
		"currency": currency,
		"price":    amount,
	}, "price fetched successfully")
}
