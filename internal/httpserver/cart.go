package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func sessionUser(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	itemID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "update_cart_error", "invalid item id", nil)
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_error", "invalid body", err)
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}

	l.Info("update_cart_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_item")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	itemID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "delete_cart_item_error", "invalid item id", nil)
	}

	if err := h.Svc.RemoveItem(ctx, userID, itemID); err != nil {
		return fail(l, "delete_cart_item_error", err)
	}

	l.Info("delete_cart_item_success", "item_id", itemID)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
