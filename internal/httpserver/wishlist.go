package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.GetWishlist(ctx, userID)
	if err != nil {
		return fail(l, "get_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req transport.AddToWishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_wishlist_error", "invalid body", err)
	}

	item, err := h.Svc.Add(ctx, userID, req.ProductID)
	if err != nil {
		return fail(l, "add_to_wishlist_error", err)
	}

	l.Info("add_to_wishlist_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *WishlistHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.delete")

	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	itemID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "delete_wishlist_error", "invalid item id", nil)
	}

	if err := h.Svc.Remove(ctx, userID, itemID); err != nil {
		return fail(l, "delete_wishlist_error", err)
	}

	l.Info("delete_wishlist_success", "item_id", itemID)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
