package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/handlers"
	"github.com/nfrund/charroom/internal/middleware"
)

// setupErrorHandling installs an error handler that answers with the API's
// JSON error shape and logs unhandled errors with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, handlers.ErrorResponse{Code: codeFor(he.Code), Message: msg})
			return
		}

		middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("stack_trace", string(debug.Stack())),
		)
		_ = c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{Code: "internal", Message: "Internal server error"})
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		if status >= 500 {
			return "internal"
		}
		return "error"
	}
}
