package cart

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/stock"
)

type Handler struct {
	DB    *gorm.DB
	Stock *stock.Ledger
}

type addToCartBody struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// AddToCart reserves stock and adds the book to the caller's cart in a
// single transaction, so a failed reservation leaves the cart untouched.
func (h *Handler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseBookID(c)
	if err != nil {
		return response.Error(c, err)
	}

	body := addToCartBody{Quantity: 1}
	if err := c.Bind(&body); err != nil {
		return response.Error(c, apperr.Invalid("invalid request body"))
	}
	if body.Quantity < 1 {
		return response.Error(c, apperr.Invalid("quantity must be at least 1"))
	}
	qty := uint(body.Quantity)

	var cart models.Cart
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("book not found")
			}
			return apperr.Internal(err, "could not load book")
		}

		if err := h.Stock.WithTx(tx).Reserve(ctx, bookID, qty); err != nil {
			return err
		}

		if err := tx.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
			return apperr.Internal(err, "could not load cart")
		}

		var line models.CartLine
		err := tx.Where("cart_id = ? AND book_id = ?", cart.ID, bookID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.CartLine{
				CartID:    cart.ID,
				BookID:    bookID,
				Quantity:  qty,
				UnitPrice: book.Price,
			}
			if err := tx.Create(&line).Error; err != nil {
				return apperr.Internal(err, "could not add cart line")
			}
		case err != nil:
			return apperr.Internal(err, "could not load cart line")
		default:
			line.Quantity += qty
			if err := tx.Save(&line).Error; err != nil {
				return apperr.Internal(err, "could not update cart line")
			}
		}

		cart.Total += line.UnitPrice * float64(qty)
		if err := tx.Save(&cart).Error; err != nil {
			return apperr.Internal(err, "could not update cart total")
		}
		return nil
	})
	if txErr != nil {
		return response.Error(c, txErr)
	}

	if err := h.DB.WithContext(ctx).Preload("Lines").First(&cart, cart.ID).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not reload cart"))
	}
	return response.Success(c, cart, "book added to cart successfully")
}

// GetCart returns the caller's cart. A user who never added anything gets
// an empty cart payload without one being created.
func (h *Handler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	var cart models.Cart
	err := h.DB.WithContext(ctx).Preload("Lines.Book").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Success(c, echo.Map{
				"lines": []models.CartLine{},
				"total": 0,
			}, "cart is empty")
		}
		return response.Error(c, apperr.Internal(err, "could not load cart"))
	}
	return response.Success(c, cart, "cart fetched successfully")
}

// RemoveFromCart drops the whole cart line and returns its quantity to
// stock, in the same transaction.
func (h *Handler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.CurrentUserID(c)

	bookID, err := parseBookID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var cart models.Cart
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart not found")
			}
			return apperr.Internal(err, "could not load cart")
		}

		var line models.CartLine
		err := tx.Where("cart_id = ? AND book_id = ?", cart.ID, bookID).First(&line).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("book is not in the cart")
			}
			return apperr.Internal(err, "could not load cart line")
		}

		if err := h.Stock.WithTx(tx).Release(ctx, bookID, line.Quantity); err != nil {
			return err
		}

		cart.Total -= line.UnitPrice * float64(line.Quantity)
		if cart.Total < 0 {
			cart.Total = 0
		}
		if err := tx.Save(&cart).Error; err != nil {
			return apperr.Internal(err, "could not update cart total")
		}
		if err := tx.Delete(&line).Error; err != nil {
			return apperr.Internal(err, "could not remove cart line")
		}
		return nil
	})
	if txErr != nil {
		return response.Error(c, txErr)
	}

	if err := h.DB.WithContext(ctx).Preload("Lines").First(&cart, cart.ID).Error; err != nil {
		return response.Error(c, apperr.Internal(err, "could not reload cart"))
	}
	return response.Success(c, cart, "book removed from cart successfully")
}

func parseBookID(c echo.Context) (uint, error) {
	raw := c.Param("bookId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("invalid bookId %q", raw)
	}
	return uint(id), nil
}
