package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Search *search.Index
	Events events.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, f, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, scopedNotFound(err, "product")
	}
	return p, nil
}

// SearchProducts prefers the search index and falls back to the database.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, invalid("query is required")
	}

	if s.Search != nil {
		total, prods, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			return total, prods, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in transport.ProductInput) (*models.Product, error) {
	p, err := s.checkProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if isDuplicate(err) {
			return nil, invalid("slug %q already exists", p.Slug)
		}
		return nil, err
	}
	s.afterWrite(ctx, p)
	return p, nil
}

type bulkRow struct {
	input    transport.ProductInput
	err      error
	sheetRow int
}

// BulkUpsert upserts every product independently and reports per-item results.
func (s *CatalogService) BulkUpsert(ctx context.Context, in []transport.ProductInput) (*transport.BulkResponse, error) {
	if len(in) == 0 {
		return nil, invalid("products must be a non-empty array")
	}
	rows := make([]bulkRow, len(in))
	for i := range in {
		rows[i] = bulkRow{input: in[i]}
	}
	return s.runBulk(ctx, rows), nil
}

func (s *CatalogService) runBulk(ctx context.Context, rows []bulkRow) *transport.BulkResponse {
	l := logging.FromContext(ctx).With("svc", "catalog.bulk_upsert")

	resp := &transport.BulkResponse{
		Results: []transport.BulkResult{},
		Errors:  []transport.BulkError{},
	}
	for i, row := range rows {
		p, err := s.upsertRow(ctx, row)
		if err != nil {
			msg := Message(err)
			if msg == "" {
				l.Error("bulk_item_error", "index", i, "row", row.sheetRow, "slug", row.input.Slug, "error", err)
				msg = "internal error"
			}
			resp.Failed++
			resp.Errors = append(resp.Errors, transport.BulkError{Index: i, Row: row.sheetRow, Slug: row.input.Slug, Error: msg})
			continue
		}
		resp.Success++
		resp.Results = append(resp.Results, transport.BulkResult{Index: i, Row: row.sheetRow, ID: p.ID, Slug: p.Slug})
	}
	return resp
}

func (s *CatalogService) upsertRow(ctx context.Context, row bulkRow) (*models.Product, error) {
	if row.err != nil {
		return nil, row.err
	}
	p, err := s.checkProduct(ctx, row.input)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertProduct(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *CatalogService) checkProduct(ctx context.Context, in transport.ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	switch {
	case name == "":
		return nil, invalid("name is required")
	case slug == "":
		return nil, invalid("slug is required")
	case in.Price < 0 || in.OriginalPrice < 0:
		return nil, invalid("price cannot be negative")
	case in.StockQuantity < 0:
		return nil, invalid("stock_quantity cannot be negative")
	case in.CategoryID == 0:
		return nil, invalid("category_id is required")
	}

	ok, err := s.Repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("category %d does not exist", in.CategoryID)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	original := in.OriginalPrice
	if original == 0 {
		original = in.Price
	}

	return &models.Product{
		CategoryID:    in.CategoryID,
		Slug:          slug,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		OriginalPrice: original,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsFeatured:    in.IsFeatured,
		IsNew:         in.IsNew,
		IsActive:      active,
		ImageURL:      strings.TrimSpace(in.ImageURL),
	}, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product) {
	if s.Search != nil {
		if err := s.Search.IndexProduct(ctx, *p); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProducts, "product_upserted", strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"product_id": p.ID,
		"slug":       p.Slug,
		"price":      p.Price,
	})
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	cat := &models.Category{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.ToLower(strings.TrimSpace(req.Slug)),
	}
	if cat.Name == "" || cat.Slug == "" {
		return nil, invalid("name and slug are required")
	}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		if isDuplicate(err) {
			return nil, invalid("slug %q already exists", cat.Slug)
		}
		return nil, err
	}
	return cat, nil
}
