package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/logging"
)

// Envelope is the single response shape used by every handler.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Message string  `json:"message"`
	Error   *string `json:"error"`
}

func Success(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Error translates an error into the envelope. Internal errors are logged
// with their cause and replaced by a generic message.
func Error(c echo.Context, err error) error {
	ae := apperr.From(err)

	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		logging.FromContext(c.Request().Context()).Error().Err(err).Msg("request failed")
		msg = "something went wrong"
	}

	kind := string(ae.Kind)
	return c.JSON(apperr.StatusOf(ae.Kind), Envelope{
		Success: false,
		Data:    nil,
		Message: msg,
		Error:   &kind,
	})
}
