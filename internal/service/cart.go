package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func ensureProduct(ctx context.Context, r *repo.GormRepo, id uint) error {
	if id == 0 {
		return invalid("product_id is required")
	}
	ok, err := r.ProductExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("product")
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

// AddToCart adds quantity (default 1) of a product, merging with an existing row.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, invalid("quantity must be at least 1")
	}
	if err := ensureProduct(ctx, s.Repo, productID); err != nil {
		return nil, err
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: uint(quantity)}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicCart, "cart_item_added", idKey(userID), map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	item, err := s.Repo.UpdateCartQuantity(ctx, userID, itemID, uint(quantity))
	if err != nil {
		return nil, scopedNotFound(err, "cart item")
	}

	events.Emit(ctx, s.Events, events.TopicCart, "cart_item_updated", idKey(userID), map[string]any{
		"user_id":  userID,
		"item_id":  itemID,
		"quantity": quantity,
	})
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		return scopedNotFound(err, "cart item")
	}

	events.Emit(ctx, s.Events, events.TopicCart, "cart_item_removed", idKey(userID), map[string]any{
		"user_id": userID,
		"item_id": itemID,
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	events.Emit(ctx, s.Events, events.TopicCart, "cart_cleared", idKey(userID), map[string]any{"user_id": userID})
	return nil
}
