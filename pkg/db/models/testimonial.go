package models

import (
	"time"

	"github.com/google/uuid"
)

// Testimonial is a curated review shown on a storefront. The ID is derived
// from the storefront and the review content so re-inserting the same
// review collides on the primary key instead of duplicating.
type Testimonial struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StorefrontID     uuid.UUID `gorm:"column:storefront_id;type:uuid;not null;index"`
	AuthorName       string    `gorm:"column:author_name;not null"`
	Body             string    `gorm:"column:body;not null"`
	Rating           int       `gorm:"column:rating;not null"`
	AuthorImageURL   *string   `gorm:"column:author_image_url"`
	IsExternalReview bool      `gorm:"column:is_external_review;not null;default:false"`
	Position         int       `gorm:"column:position;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
