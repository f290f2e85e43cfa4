package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type DiscountService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *DiscountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Active returns the newest discount whose inclusive window contains now, or nil.
func (s *DiscountService) Active(ctx context.Context) (*models.Discount, error) {
	return s.Repo.ActiveDiscount(ctx, s.now())
}

func (s *DiscountService) Create(ctx context.Context, req transport.CreateDiscountRequest) (*models.Discount, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, invalid("name is required")
	case req.Percentage <= 0 || req.Percentage > 100:
		return nil, invalid("percentage must be greater than 0 and at most 100")
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return nil, invalid("start_date and end_date are required")
	case req.EndDate.Before(req.StartDate):
		return nil, invalid("end_date must not be before start_date")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	d := &models.Discount{
		Name:       name,
		Percentage: req.Percentage,
		IsActive:   active,
		ApplyToAll: req.ApplyToAll,
		StartDate:  req.StartDate.UTC(),
		EndDate:    req.EndDate.UTC(),
	}
	if err := s.Repo.CreateDiscount(ctx, d); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicPromotions, "discount_created", idKey(d.ID), map[string]any{
		"discount_id": d.ID,
		"percentage":  d.Percentage,
	})
	return d, nil
}
