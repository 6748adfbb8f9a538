package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/enums"
)

// StoreImage is a hero or gallery picture of a storefront. ExternalPhotoRef
// is set only for images ingested from the business directory; operator
// uploads leave it NULL.
type StoreImage struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StorefrontID     uuid.UUID       `gorm:"column:storefront_id;type:uuid;not null;index;uniqueIndex:idx_store_images_single_hero,where:role = 'hero'"`
	URL              string          `gorm:"column:url;not null"`
	StorageKey       string          `gorm:"column:storage_key;not null;default:''"`
	AltText          string          `gorm:"column:alt_text;not null;default:''"`
	Role             enums.ImageRole `gorm:"column:role;type:varchar(16);not null"`
	Order            int             `gorm:"column:sort_order;not null;default:0"`
	Width            int             `gorm:"column:width;not null;default:0"`
	Height           int             `gorm:"column:height;not null;default:0"`
	ExternalPhotoRef *string         `gorm:"column:external_photo_ref"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (StoreImage) TableName() string {
	return "store_images"
}

func (s *StoreImage) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsExternal reports whether the image came from the business directory.
func (s StoreImage) IsExternal() bool {
	return s.ExternalPhotoRef != nil
}

// All lists every model owned by the schema, in dependency order.
func All() []any {
	return []any{&Storefront{}, &StorefrontService{}, &Testimonial{}, &StoreImage{}}
}
