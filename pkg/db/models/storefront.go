package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/types"
)

// Storefront is the tenant business listing.
type Storefront struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Slug                string             `gorm:"column:slug;not null;uniqueIndex:idx_storefronts_slug"`
	Name                string             `gorm:"column:name;not null"`
	Category            string             `gorm:"column:category;not null;default:''"`
	CategorySlug        string             `gorm:"column:category_slug;not null;default:''"`
	Address             string             `gorm:"column:address;not null;default:''"`
	City                string             `gorm:"column:city;not null;default:''"`
	CitySlug            string             `gorm:"column:city_slug;not null;default:''"`
	Region              string             `gorm:"column:region;not null;default:''"`
	PostalCode          string             `gorm:"column:postal_code;not null;default:''"`
	Latitude            *float64           `gorm:"column:latitude"`
	Longitude           *float64           `gorm:"column:longitude"`
	Phone               *string            `gorm:"column:phone"`
	WhatsApp            *string            `gorm:"column:whatsapp"`
	HeroTitle           string             `gorm:"column:hero_title;not null;default:''"`
	HeroSubtitle        string             `gorm:"column:hero_subtitle;not null;default:''"`
	Description         string             `gorm:"column:description;not null;default:''"`
	SEOTitle            string             `gorm:"column:seo_title;not null;default:''"`
	SEODescription      string             `gorm:"column:seo_description;not null;default:''"`
	FAQs                types.FAQList      `gorm:"column:faqs;type:jsonb"`
	ServiceAreas        types.StringList   `gorm:"column:service_areas;type:jsonb"`
	Differentiator      *string            `gorm:"column:differentiator"`
	ExternalDirectoryID *string            `gorm:"column:external_directory_id;uniqueIndex:idx_storefronts_external_directory_id"`
	ExternalRating      *decimal.Decimal   `gorm:"column:external_rating;type:numeric(2,1)"`
	ExternalReviewCount int                `gorm:"column:external_review_count;not null;default:0"`
	OpeningHours        types.OpeningHours `gorm:"column:opening_hours;type:jsonb"`
	CoverURL            *string            `gorm:"column:cover_url"`
	LogoURL             *string            `gorm:"column:logo_url"`
	FaviconURL          *string            `gorm:"column:favicon_url"`
	OwnerID             *uuid.UUID         `gorm:"column:owner_id;type:uuid"`
	IsActive            bool               `gorm:"column:is_active;not null;default:false"`
	LastSyncedAt        *time.Time         `gorm:"column:last_synced_at"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Storefront) TableName() string {
	return "storefronts"
}

func (s *Storefront) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
