package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ProfileService struct {
	Repo *repo.GormRepo
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, scopedNotFound(err, "user")
	}
	return u, nil
}

// Update applies the non-nil fields of req.
func (s *ProfileService) Update(ctx context.Context, userID uint, req transport.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		updates["name"] = name
	}
	optional := map[string]*string{
		"phone":       req.Phone,
		"address":     req.Address,
		"city":        req.City,
		"postal_code": req.PostalCode,
		"country":     req.Country,
	}
	for col, v := range optional {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}

	u, err := s.Repo.UpdateUserProfile(ctx, userID, updates)
	if err != nil {
		return nil, scopedNotFound(err, "user")
	}
	return u, nil
}
