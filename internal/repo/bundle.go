package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListBundles(ctx context.Context) ([]models.Bundle, error) {
	items := []models.Bundle{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetBundle(ctx context.Context, id uint) (*models.Bundle, error) {
	var bundle models.Bundle
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&bundle).Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *GormRepo) BundleExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Bundle{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateBundle(ctx context.Context, bundle *models.Bundle) error {
	return r.DB.WithContext(ctx).Omit("Items").Create(bundle).Error
}

func (r *GormRepo) AddBundleItem(ctx context.Context, item *models.BundleItem) error {
	return r.DB.WithContext(ctx).Omit("Product").Create(item).Error
}

// DeleteBundleItem removes the item only when it belongs to the given bundle.
func (r *GormRepo) DeleteBundleItem(ctx context.Context, bundleID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND bundle_id = ?", itemID, bundleID).Delete(&models.BundleItem{})
	return scoped(res)
}
