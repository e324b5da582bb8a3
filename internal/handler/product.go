package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"codefriend-store/internal/apperr"
	"codefriend-store/internal/middleware"
	"codefriend-store/internal/service"
)

type ProductHandler struct {
	entitlementService service.EntitlementService
	telemetryService   service.TelemetryService
}

func NewProductHandler(entitlementService service.EntitlementService, telemetryService service.TelemetryService) *ProductHandler {
	return &ProductHandler{
		entitlementService: entitlementService,
		telemetryService:   telemetryService,
	}
}

// Download redirects entitled callers to a signed asset URL. The asset bytes
// themselves are streamed by the storage layer.
func (h *ProductHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("id")

	var userID *string
	if actor := middleware.ActorFrom(c); actor.Known() {
		userID = &actor.UserID
	}

	assetURL, err := h.entitlementService.Download(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "not entitled / purchase required")
		}
		return toHTTPError(err)
	}

	return c.Redirect(http.StatusFound, assetURL)
}

func (h *ProductHandler) RecordView(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("id")

	// logged-in viewers dedupe by user id, anonymous ones by client address
	requester := c.RealIP()
	if actor := middleware.ActorFrom(c); actor.Known() {
		requester = actor.UserID
	}

	if err := h.telemetryService.RecordView(ctx, requester, productID); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
