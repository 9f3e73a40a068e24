package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/hash"
	"github.com/bookmandala/bookstore/internal/models"
	"github.com/bookmandala/bookstore/internal/response"
	"github.com/bookmandala/bookstore/internal/session"
	"github.com/bookmandala/bookstore/internal/token"
)

type fakeUploader struct {
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, _ string) (string, error) {
	f.calls++
	return fmt.Sprintf("https://cdn.test/img-%d.png", f.calls), nil
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.MemoryStore
	Tokens   *token.Manager
	Uploads  *fakeUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Book{}, &models.Cart{}, &models.CartLine{},
		&models.Genre{}, &models.Review{}, &models.Currency{},
	))

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Sessions: session.NewMemoryStore(),
		Tokens:   token.NewManager([]byte("test-secret"), time.Hour),
		Uploads:  &fakeUploader{},
	}
}

func (env *testEnv) createUser(email, password string) models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{
		FullName:     "Test User",
		Email:        email,
		PhoneNumber:  "9800000000",
		DOB:          "1990-01-01",
		Gender:       "Others",
		PasswordHash: &pwHash,
		Avatar:       "https://cdn.test/avatar.png",
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createBook(title, author string, price float64, quantity int) models.Book {
	env.T.Helper()

	book := models.Book{
		Title:      title,
		Author:     author,
		Price:      price,
		Quantity:   quantity,
		CoverImage: "https://cdn.test/cover.png",
		Language:   "English",
	}
	require.NoError(env.T, env.DB.Create(&book).Error)
	return book
}

// newContext builds an echo context carrying the given body; user may be
// nil for unauthenticated requests.
func (env *testEnv) newContext(method, target string, body io.Reader, contentType string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	env.T.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if user != nil {
		c.Set("user", *user)
		c.Set("userID", user.ID)
	}
	return c, rec
}

func (env *testEnv) jsonContext(method, target string, payload any, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	env.T.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(env.T, err)
	return env.newContext(method, target, bytes.NewReader(raw), echo.MIMEApplicationJSON, user)
}

// multipartContext assembles a multipart form with string fields plus any
// number of small PNG-named file parts.
func (env *testEnv) multipartContext(method, target string, fields map[string]string, files map[string]string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	env.T.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(env.T, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	return env.newContext(method, target, &buf, w.FormDataContentType(), user)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func requireEnvelopeError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()

	require.Equal(t, status, rec.Code)
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, kind, *env.Error)
}

func setPathParam(c echo.Context, name, value string) {
	c.SetParamNames(name)
	c.SetParamValues(value)
}
