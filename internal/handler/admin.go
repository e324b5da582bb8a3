package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codefriend-store/internal/dto"
	"codefriend-store/internal/middleware"
	"codefriend-store/internal/service"
)

type AdminHandler struct {
	verifyService    service.VerifyService
	telemetryService service.TelemetryService
}

func NewAdminHandler(verifyService service.VerifyService, telemetryService service.TelemetryService) *AdminHandler {
	return &AdminHandler{
		verifyService:    verifyService,
		telemetryService: telemetryService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	filter := dto.AdminOrderFilter{
		Status: c.QueryParam("status"),
		Query:  c.QueryParam("q"),
	}

	result, err := h.verifyService.List(ctx, actor, filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)
	orderID := c.Param("id")

	if err := h.verifyService.Approve(ctx, actor, orderID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
}

func (h *AdminHandler) Reject(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)
	orderID := c.Param("id")

	if err := h.verifyService.Reject(ctx, actor, orderID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "failed"})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	result, err := h.telemetryService.Stats(ctx, actor)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}
