package testimonials

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefronts/internal/reviews"
	"github.com/angelmondragon/storefronts/pkg/db/models"
)

// Repository persists testimonials.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to testimonial operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStorefront returns testimonials in display order.
func (r *Repository) ListByStorefront(ctx context.Context, storefrontID uuid.UUID) ([]models.Testimonial, error) {
	var rows []models.Testimonial
	err := r.db.WithContext(ctx).
		Where("storefront_id = ?", storefrontID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// Replace deletes every testimonial of a storefront and inserts the curated
// ones. Inserts skip rows whose id already exists, so a duplicate review is
// not an error. It returns how many rows were inserted.
func (r *Repository) Replace(tx *gorm.DB, storefrontID uuid.UUID, curated []reviews.CuratedTestimonial) (int, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	if err := tx.Where("storefront_id = ?", storefrontID).Delete(&models.Testimonial{}).Error; err != nil {
		return 0, fmt.Errorf("delete testimonials: %w", err)
	}

	created := 0
	for _, c := range curated {
		row := models.Testimonial{
			ID:               c.ID(storefrontID),
			StorefrontID:     storefrontID,
			AuthorName:       c.AuthorName,
			Body:             c.Body,
			Rating:           c.Rating,
			AuthorImageURL:   optional(c.AuthorImageURL),
			IsExternalReview: true,
			Position:         c.Position,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return created, fmt.Errorf("insert testimonial: %w", res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
