package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/uploader"
)

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid %s", name)
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// uploadFormFile buffers a multipart file to a temp path, hands it to the
// asset store and removes the temp file whether the upload succeeded or not.
func uploadFormFile(ctx context.Context, up uploader.Uploader, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", apperr.Internal(err, "could not read uploaded file")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		return "", apperr.Internal(err, "could not buffer uploaded file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", apperr.Internal(err, "could not buffer uploaded file")
	}
	if err := tmp.Close(); err != nil {
		return "", apperr.Internal(err, "could not buffer uploaded file")
	}

	url, err := up.Upload(ctx, tmpPath)
	if err != nil {
		return "", apperr.Internal(err, "failed to upload file to asset store")
	}
	return url, nil
}
