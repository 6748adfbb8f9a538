package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorefrontService is a service offered by a storefront.
type StorefrontService struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StorefrontID     uuid.UUID `gorm:"column:storefront_id;type:uuid;not null;uniqueIndex:idx_storefront_services_slug,priority:1"`
	Name             string    `gorm:"column:name;not null"`
	Slug             string    `gorm:"column:slug;not null;uniqueIndex:idx_storefront_services_slug,priority:2"`
	ShortDescription string    `gorm:"column:short_description;not null;default:''"`
	LongDescription  string    `gorm:"column:long_description;not null;default:''"`
	SEODescription   string    `gorm:"column:seo_description;not null;default:''"`
	Position         int       `gorm:"column:position;not null"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StorefrontService) TableName() string {
	return "storefront_services"
}

func (s *StorefrontService) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
