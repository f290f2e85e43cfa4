package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type BundleHTTP struct {
	Svc *service.BundleService
}

func (h *BundleHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "bundle.list")

	bundles, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_bundles_error", err)
	}
	return c.JSON(http.StatusOK, bundles)
}

func (h *BundleHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "bundle.get")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "get_bundle_error", "invalid bundle id", nil)
	}

	bundle, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_bundle_error", err)
	}
	return c.JSON(http.StatusOK, bundle)
}

func (h *BundleHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "bundle.create")

	var req transport.CreateBundleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_bundle_error", "invalid body", err)
	}

	bundle, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_bundle_error", err)
	}

	l.Info("create_bundle_success", "bundle_id", bundle.ID)
	return c.JSON(http.StatusCreated, bundle)
}

func (h *BundleHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "bundle.add_item")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "add_bundle_item_error", "invalid bundle id", nil)
	}

	var req transport.AddBundleItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_bundle_item_error", "invalid body", err)
	}

	item, err := h.Svc.AddItem(ctx, id, req)
	if err != nil {
		return fail(l, "add_bundle_item_error", err)
	}

	l.Info("add_bundle_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, echo.Map{"item": item})
}

func (h *BundleHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "bundle.remove_item")

	bundleID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "remove_bundle_item_error", "invalid bundle id", nil)
	}
	itemID, ok := util.ParseID(c.Param("itemId"))
	if !ok {
		return badRequest(l, "remove_bundle_item_error", "invalid item id", nil)
	}

	if err := h.Svc.RemoveItem(ctx, bundleID, itemID); err != nil {
		return fail(l, "remove_bundle_item_error", err)
	}

	l.Info("remove_bundle_item_success", "bundle_id", bundleID, "item_id", itemID)
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed from bundle"})
}
