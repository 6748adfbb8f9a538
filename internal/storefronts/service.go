package storefronts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/pagination"
)

type storefrontRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Storefront, error)
	List(ctx context.Context, params pagination.Params) (pagination.Page[models.Storefront], error)
}

// Service exposes read operations for the admin surface.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Storefront, error)
	List(ctx context.Context, params pagination.Params) (pagination.Page[models.Storefront], error)
}

type service struct {
	repo storefrontRepository
}

// NewService builds the storefront read service.
func NewService(repo storefrontRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("storefront repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Storefront, error) {
	sf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load storefront")
	}
	return sf, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Storefront], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return page, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list storefronts")
	}
	return page, nil
}
