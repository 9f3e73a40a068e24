package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookmandala/bookstore/internal/models"
)

func TestSetAndGetPrice(t *testing.T) {
	env := newTestEnv(t)
	h := &CurrencyHandler{DB: env.DB}
	user := env.createUser("seller@example.com", "secret123")
	env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/currency/set-price/1",
		map[string]any{"currencyType": "NPR", "priceNPR": 550.0, "priceUSD": 4.2}, &user)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.SetPrice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// A second set updates the same row.
	c, rec = env.jsonContext(http.MethodPost, "/api/v1/currency/set-price/1",
		map[string]any{"currencyType": "USD", "priceNPR": 600.0, "priceUSD": 4.5}, &user)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.SetPrice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Currency{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	c, rec = env.newContext(http.MethodGet, "/api/v1/currency/get-price/1?currency=USD", nil, "", nil)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.GetPrice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	envl := decodeEnvelope(t, rec)
	data := envl.Data.(map[string]any)
	require.Equal(t, "USD", data["currency"])
	require.Equal(t, 4.5, data["price"])

	c, rec = env.newContext(http.MethodGet, "/api/v1/currency/get-price/1", nil, "", nil)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.GetPrice(c))
	envl = decodeEnvelope(t, rec)
	full := envl.Data.(map[string]any)
	require.Equal(t, 600.0, full["price_npr"])
}

func TestGetPriceErrors(t *testing.T) {
	env := newTestEnv(t)
	h := &CurrencyHandler{DB: env.DB}
	env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)

	c, rec := env.newContext(http.MethodGet, "/api/v1/currency/get-price/1", nil, "", nil)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.GetPrice(c))
	requireEnvelopeError(t, rec, http.StatusNotFound, "not_found")

	user := env.createUser("seller@example.com", "secret123")
	c, rec = env.jsonContext(http.MethodPost, "/api/v1/currency/set-price/1",
		map[string]any{"currencyType": "EUR", "priceNPR": 1.0, "priceUSD": 1.0}, &user)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.SetPrice(c))
	requireEnvelopeError(t, rec, http.StatusBadRequest, "invalid_input")

	c, rec = env.jsonContext(http.MethodPost, "/api/v1/currency/set-price/9",
		map[string]any{"currencyType": "NPR", "priceNPR": 1.0, "priceUSD": 1.0}, &user)
	setPathParam(c, "bookId", "9")
	require.NoError(t, h.SetPrice(c))
	requireEnvelopeError(t, rec, http.StatusNotFound, "not_found")
}
