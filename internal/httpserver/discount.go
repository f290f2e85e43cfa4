package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type DiscountHTTP struct {
	Svc *service.DiscountService
}

func (h *DiscountHTTP) Active(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.active")

	d, err := h.Svc.Active(ctx)
	if err != nil {
		return fail(l, "active_discount_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"discount": d})
}

func (h *DiscountHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.create")

	var req transport.CreateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_discount_error", "invalid body", err)
	}

	d, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_discount_error", err)
	}

	l.Info("create_discount_success", "discount_id", d.ID)
	return c.JSON(http.StatusCreated, echo.Map{"discount": d})
}
