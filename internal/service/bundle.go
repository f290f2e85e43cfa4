package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type BundleService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *BundleService) List(ctx context.Context) ([]models.Bundle, error) {
	return s.Repo.ListBundles(ctx)
}

func (s *BundleService) Get(ctx context.Context, id uint) (*models.Bundle, error) {
	b, err := s.Repo.GetBundle(ctx, id)
	if err != nil {
		return nil, scopedNotFound(err, "bundle")
	}
	return b, nil
}

func (s *BundleService) Create(ctx context.Context, req transport.CreateBundleRequest) (*models.Bundle, error) {
	b := &models.Bundle{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
	}
	if b.Name == "" || b.Slug == "" {
		return nil, invalid("name and slug are required")
	}
	if b.Price < 0 {
		return nil, invalid("price cannot be negative")
	}

	if err := s.Repo.CreateBundle(ctx, b); err != nil {
		if isDuplicate(err) {
			return nil, invalid("slug %q already exists", b.Slug)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicPromotions, "bundle_created", idKey(b.ID), map[string]any{
		"bundle_id": b.ID,
		"slug":      b.Slug,
	})
	return b, nil
}

func (s *BundleService) AddItem(ctx context.Context, bundleID uint, req transport.AddBundleItemRequest) (*models.BundleItem, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, invalid("quantity must be at least 1")
	}

	ok, err := s.Repo.BundleExists(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("bundle")
	}
	if err := ensureProduct(ctx, s.Repo, req.ProductID); err != nil {
		return nil, err
	}

	item := &models.BundleItem{BundleID: bundleID, ProductID: req.ProductID, Quantity: uint(req.Quantity)}
	if err := s.Repo.AddBundleItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes the item only when it belongs to bundleID.
func (s *BundleService) RemoveItem(ctx context.Context, bundleID, itemID uint) error {
	if err := s.Repo.DeleteBundleItem(ctx, bundleID, itemID); err != nil {
		return scopedNotFound(err, "bundle item")
	}

	events.Emit(ctx, s.Events, events.TopicPromotions, "bundle_item_removed", idKey(bundleID), map[string]any{
		"bundle_id": bundleID,
		"item_id":   itemID,
	})
	return nil
}
