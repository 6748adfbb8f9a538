package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/internal/content"
	"github.com/angelmondragon/storefronts/internal/slugs"
	"github.com/angelmondragon/storefronts/pkg/db/models"
)

// Repository persists storefront services.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to service operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStorefront returns services in display order.
func (r *Repository) ListByStorefront(ctx context.Context, storefrontID uuid.UUID) ([]models.StorefrontService, error) {
	var rows []models.StorefrontService
	err := r.db.WithContext(ctx).
		Where("storefront_id = ?", storefrontID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// Replace deletes the storefront's services and inserts entries in order,
// allocating a unique slug per service. It must run inside tx.
func (r *Repository) Replace(ctx context.Context, tx *gorm.DB, storefrontID uuid.UUID, entries []content.ServiceCopy) ([]models.StorefrontService, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if err := tx.Where("storefront_id = ?", storefrontID).Delete(&models.StorefrontService{}).Error; err != nil {
		return nil, fmt.Errorf("delete services: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	allocated, err := slugs.AllocateBatch(ctx, tx, slugs.ServiceScope(storefrontID), names)
	if err != nil {
		return nil, err
	}

	rows := make([]models.StorefrontService, len(entries))
	for i, e := range entries {
		rows[i] = models.StorefrontService{
			StorefrontID:     storefrontID,
			Name:             e.Name,
			Slug:             allocated[i],
			ShortDescription: e.ShortDescription,
			LongDescription:  e.LongDescription,
			SEODescription:   e.SEODescription,
			Position:         i + 1,
			IsActive:         true,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert services: %w", err)
	}
	return rows, nil
}
