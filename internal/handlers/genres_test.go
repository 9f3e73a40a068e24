package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookmandala/bookstore/internal/models"
)

func TestCreateGenre(t *testing.T) {
	env := newTestEnv(t)
	h := &GenreHandler{DB: env.DB, Uploads: env.Uploads}
	user := env.createUser("reader@example.com", "secret123")
	env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)

	c, rec := env.multipartContext(http.MethodPost, "/api/v1/geners/create-geners/1",
		map[string]string{"title": "Fiction"}, map[string]string{"icon": "icon.png"}, &user)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.CreateGenre(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var genre models.Genre
	require.NoError(t, env.DB.Preload("Books").Where("title = ?", "Fiction").First(&genre).Error)
	require.Equal(t, "https://cdn.test/img-1.png", genre.Icon)
	require.Len(t, genre.Books, 1)
}

func TestCreateGenreAppendsToExistingTitle(t *testing.T) {
	env := newTestEnv(t)
	h := &GenreHandler{DB: env.DB, Uploads: env.Uploads}
	user := env.createUser("reader@example.com", "secret123")
	env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)
	env.createBook("Seto Dharti", "Amar Neupane", 450, 8)

	c, _ := env.multipartContext(http.MethodPost, "/api/v1/geners/create-geners/1",
		map[string]string{"title": "Fiction"}, map[string]string{"icon": "icon.png"}, &user)
	setPathParam(c, "bookId", "1")
	require.NoError(t, h.CreateGenre(c))

	// Same title with another book joins the existing genre.
	c, rec := env.multipartContext(http.MethodPost, "/api/v1/geners/create-geners/2",
		map[string]string{"title": "Fiction"}, nil, &user)
	setPathParam(c, "bookId", "2")
	require.NoError(t, h.CreateGenre(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Repeating the same pair is a no-op.
	c, rec = env.multipartContext(http.MethodPost, "/api/v1/geners/create-geners/2",
		map[string]string{"title": "Fiction"}, nil, &user)
	setPathParam(c, "bookId", "2")
	require.NoError(t, h.CreateGenre(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Genre{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var genre models.Genre
	require.NoError(t, env.DB.Preload("Books").Where("title = ?", "Fiction").First(&genre).Error)
	require.Len(t, genre.Books, 2)
}

func TestGetGenres(t *testing.T) {
	env := newTestEnv(t)
	h := &GenreHandler{DB: env.DB, Uploads: env.Uploads}
	user := env.createUser("reader@example.com", "secret123")
	book := env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)

	genre := models.Genre{Title: "Fiction", Icon: "https://cdn.test/icon.png", OwnerID: user.ID}
	require.NoError(t, env.DB.Create(&genre).Error)
	require.NoError(t, env.DB.Model(&genre).Association("Books").Append(&book))

	c, rec := env.newContext(http.MethodGet, "/api/v1/geners/get-all-geners", nil, "", nil)
	require.NoError(t, h.GetAllGenres(c))
	require.Equal(t, http.StatusOK, rec.Code)
	envl := decodeEnvelope(t, rec)
	require.Len(t, envl.Data.([]any), 1)

	c, rec = env.newContext(http.MethodGet, "/api/v1/geners/get-single-geners/1", nil, "", nil)
	setPathParam(c, "genreId", "1")
	require.NoError(t, h.GetGenre(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = env.newContext(http.MethodGet, "/api/v1/geners/get-single-geners/99", nil, "", nil)
	setPathParam(c, "genreId", "99")
	require.NoError(t, h.GetGenre(c))
	requireEnvelopeError(t, rec, http.StatusNotFound, "not_found")
}

func TestUpdateGenre(t *testing.T) {
	env := newTestEnv(t)
	h := &GenreHandler{DB: env.DB, Uploads: env.Uploads}
	user := env.createUser("reader@example.com", "secret123")

	require.NoError(t, env.DB.Create(&models.Genre{Title: "Fiction", Icon: "x", OwnerID: user.ID}).Error)
	require.NoError(t, env.DB.Create(&models.Genre{Title: "History", Icon: "y", OwnerID: user.ID}).Error)

	c, rec := env.multipartContext(http.MethodPatch, "/api/v1/geners/update-icon/1",
		nil, map[string]string{"icon": "new.png"}, &user)
	setPathParam(c, "genreId", "1")
	require.NoError(t, h.UpdateGenreIcon(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var genre models.Genre
	require.NoError(t, env.DB.First(&genre, 1).Error)
	require.Equal(t, "https://cdn.test/img-1.png", genre.Icon)

	c, rec = env.jsonContext(http.MethodPatch, "/api/v1/geners/update-title/1",
		map[string]string{"title": "Literary Fiction"}, &user)
	setPathParam(c, "genreId", "1")
	require.NoError(t, h.UpdateGenreTitle(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Renaming onto an existing title is refused.
	c, rec = env.jsonContext(http.MethodPatch, "/api/v1/geners/update-title/1",
		map[string]string{"title": "History"}, &user)
	setPathParam(c, "genreId", "1")
	require.NoError(t, h.UpdateGenreTitle(c))
	requireEnvelopeError(t, rec, http.StatusConflict, "conflict")
}

func TestDeleteGenre(t *testing.T) {
	env := newTestEnv(t)
	h := &GenreHandler{DB: env.DB, Uploads: env.Uploads}
	user := env.createUser("reader@example.com", "secret123")
	book := env.createBook("Palpasa Cafe", "Narayan Wagle", 550, 12)

	genre := models.Genre{Title: "Fiction", Icon: "x", OwnerID: user.ID}
	require.NoError(t, env.DB.Create(&genre).Error)
	require.NoError(t, env.DB.Model(&genre).Association("Books").Append(&book))

	c, rec := env.newContext(http.MethodDelete, "/api/v1/geners/delete-geners/1", nil, "", &user)
	setPathParam(c, "genreId", "1")
	require.NoError(t, h.DeleteGenre(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var genres, joins, books int64
	require.NoError(t, env.DB.Model(&models.Genre{}).Count(&genres).Error)
	require.NoError(t, env.DB.Table("genre_books").Count(&joins).Error)
	require.NoError(t, env.DB.Model(&models.Book{}).Count(&books).Error)
	require.Zero(t, genres)
	require.Zero(t, joins)
	require.EqualValues(t, 1, books)
}
