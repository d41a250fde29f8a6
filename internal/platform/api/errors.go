package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// notFoundResponse is the body for unmatched API routes.
type notFoundResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorHandler returns a global echo error handler that renders every error
// in the standard envelope. Unknown errors become 500; in production the
// underlying message is replaced with a generic one so internals never leak
// to clients. The full error is always logged.
func ErrorHandler(logger zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Terjadi kesalahan internal server"
		var details interface{}

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
			if he.Internal != nil && !production {
				details = he.Internal.Error()
			}
		} else if !production {
			details = err.Error()
		}

		rid, _ := c.Get("request_id").(string)
		logger.Error().
			Err(err).
			Str("request_id", rid).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", code).
			Msg("request failed")

		// Unmatched API routes get the documented not-found body
		if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api") && isRouteNotFound(err) {
			writeErr := c.JSON(http.StatusNotFound, notFoundResponse{
				Success:   false,
				Error:     "API endpoint tidak ditemukan",
				Path:      c.Request().URL.Path,
				Method:    c.Request().Method,
				Timestamp: time.Now().UTC(),
			})
			if writeErr != nil {
				logger.Error().Err(writeErr).Msg("write not-found response")
			}
			return
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, Envelope{Success: false, Error: message, Details: details})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

// isRouteNotFound distinguishes echo's router miss from a handler returning
// its own 404 (e.g. unknown patient id).
func isRouteNotFound(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return false
	}
	return he == echo.ErrNotFound || he.Message == http.StatusText(http.StatusNotFound)
}
