package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// ActiveDiscount returns the newest active discount whose window contains now,
// or nil when there is none.
func (r *GormRepo) ActiveDiscount(ctx context.Context, now time.Time) (*models.Discount, error) {
	var d models.Discount
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("created_at DESC").
		Order("id DESC").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormRepo) CreateDiscount(ctx context.Context, d *models.Discount) error {
	return r.DB.WithContext(ctx).Create(d).Error
}
