package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	if err := r.DB.WithContext(ctx).Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist returns the existing row when the product is already saved.
func (r *GormRepo) AddToWishlist(ctx context.Context, userID, productID uint) (*models.WishlistItem, error) {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		FirstOrCreate(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteWishlistItem(ctx context.Context, userID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.WishlistItem{})
	return scoped(res)
}
