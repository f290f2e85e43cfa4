package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type WishlistService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	return s.Repo.GetWishlist(ctx, userID)
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (*models.WishlistItem, error) {
	if err := ensureProduct(ctx, s.Repo, productID); err != nil {
		return nil, err
	}
	item, err := s.Repo.AddToWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicWishlist, "wishlist_item_added", idKey(userID), map[string]any{
		"user_id":    userID,
		"product_id": productID,
	})
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.Repo.DeleteWishlistItem(ctx, userID, itemID); err != nil {
		return scopedNotFound(err, "wishlist item")
	}

	events.Emit(ctx, s.Events, events.TopicWishlist, "wishlist_item_removed", idKey(userID), map[string]any{
		"user_id": userID,
		"item_id": itemID,
	})
	return nil
}
