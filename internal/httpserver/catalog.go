package httpserver

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageMeta(page, offset, limit int, total int64) echo.Map {
	return echo.Map{
		"page":        page,
		"size":        limit,
		"total":       total,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
		"has_prev":    page > 1,
		"has_next":    int64(offset+limit) < total,
	}
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	var f repo.ProductFilter
	if v := c.QueryParam("category"); v != "" {
		id, ok := util.ParseID(v)
		if !ok {
			return badRequest(l, "get_products_error", "category must be a positive integer", nil)
		}
		f.CategoryID = id
	}
	if v := c.QueryParam("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(l, "get_products_error", "featured must be a boolean", err)
		}
		f.FeaturedOnly = featured
	}

	total, items, err := h.Svc.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, prods, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"products": prods,
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_error", "invalid body", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

// BulkUpsert accepts either a JSON body or a multipart xlsx "file".
func (h *CatalogHTTP) BulkUpsert(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.bulk_upsert")

	var (
		res *transport.BulkResponse
		err error
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			return badRequest(l, "bulk_upsert_error", "file is required", ferr)
		}
		f, ferr := fh.Open()
		if ferr != nil {
			return fail(l, "bulk_upsert_error", ferr)
		}
		defer f.Close()

		res, err = h.Svc.ImportSpreadsheet(ctx, f, fh.Size)
	} else {
		var req transport.BulkProductsRequest
		if berr := c.Bind(&req); berr != nil {
			return badRequest(l, "bulk_upsert_error", "invalid body", berr)
		}
		res, err = h.Svc.BulkUpsert(ctx, req.Products)
	}
	if err != nil {
		return fail(l, "bulk_upsert_error", err)
	}

	l.Info("bulk_upsert_success", "success", res.Success, "failed", res.Failed)
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.export")

	var buf bytes.Buffer
	if err := h.Svc.ExportSpreadsheet(ctx, &buf); err != nil {
		return fail(l, "export_products_error", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "get_categories_error", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_error", "invalid body", err)
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}
