package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codefriend-store/internal/dto"
	"codefriend-store/internal/middleware"
	"codefriend-store/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	result, err := h.orderService.Create(ctx, actor, req.ProductID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	result, err := h.orderService.ListMine(ctx, actor)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) SubmitEvidence(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)
	orderID := c.Param("id")

	fileHeader, err := c.FormFile("slip")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slip image is required")
	}

	slip, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read slip image")
	}
	defer slip.Close()

	if err := h.orderService.SubmitEvidence(ctx, actor, orderID, fileHeader.Filename, slip); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "waiting_verify"})
}

func (h *OrderHandler) GetLicense(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)
	orderID := c.Param("id")

	result, err := h.orderService.GetLicense(ctx, actor, orderID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}
