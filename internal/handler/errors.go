package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"codefriend-store/internal/apperr"
)

// toHTTPError maps service error sentinels to client responses. Internal
// detail stays out of the response body.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not allowed")
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, "already processed")
	case errors.Is(err, apperr.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	case errors.Is(err, apperr.ErrDependency):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream unavailable")
	}
	return err
}
