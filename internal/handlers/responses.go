package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/middleware"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps err onto a status code and writes an ErrorResponse.
// Internal failures are logged and reported without detail.
func respondError(c echo.Context, err error) error {
	var (
		status = http.StatusInternalServerError
		resp   = ErrorResponse{Code: "internal", Message: "Internal server error"}
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, resp = http.StatusBadRequest, ErrorResponse{Code: "validation", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		status, resp = http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()}
	default:
		middleware.FromContext(c.Request().Context()).Error("Request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return c.JSON(status, resp)
}

// bindAndValidate decodes the JSON body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "is not valid JSON"}
	}
	return c.Validate(req)
}
