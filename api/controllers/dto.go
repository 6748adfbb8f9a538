package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	"github.com/angelmondragon/storefronts/pkg/types"
)

type storefrontDTO struct {
	ID                  uuid.UUID          `json:"id"`
	Slug                string             `json:"slug"`
	Name                string             `json:"name"`
	Category            string             `json:"category"`
	CategorySlug        string             `json:"category_slug"`
	Address             string             `json:"address"`
	City                string             `json:"city"`
	CitySlug            string             `json:"city_slug"`
	Region              string             `json:"region"`
	PostalCode          string             `json:"postal_code"`
	Latitude            *float64           `json:"latitude,omitempty"`
	Longitude           *float64           `json:"longitude,omitempty"`
	Phone               *string            `json:"phone,omitempty"`
	WhatsApp            *string            `json:"whatsapp,omitempty"`
	HeroTitle           string             `json:"hero_title"`
	HeroSubtitle        string             `json:"hero_subtitle"`
	Description         string             `json:"description"`
	SEOTitle            string             `json:"seo_title"`
	SEODescription      string             `json:"seo_description"`
	FAQs                types.FAQList      `json:"faqs"`
	ServiceAreas        types.StringList   `json:"service_areas"`
	Differentiator      *string            `json:"differentiator,omitempty"`
	ExternalDirectoryID *string            `json:"external_directory_id,omitempty"`
	ExternalRating      *float64           `json:"external_rating,omitempty"`
	ExternalReviewCount int                `json:"external_review_count"`
	OpeningHours        types.OpeningHours `json:"opening_hours"`
	CoverURL            *string            `json:"cover_url,omitempty"`
	IsActive            bool               `json:"is_active"`
	LastSyncedAt        *time.Time         `json:"last_synced_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func newStorefrontDTO(sf *models.Storefront) storefrontDTO {
	dto := storefrontDTO{
		ID:                  sf.ID,
		Slug:                sf.Slug,
		Name:                sf.Name,
		Category:            sf.Category,
		CategorySlug:        sf.CategorySlug,
		Address:             sf.Address,
		City:                sf.City,
		CitySlug:            sf.CitySlug,
		Region:              sf.Region,
		PostalCode:          sf.PostalCode,
		Latitude:            sf.Latitude,
		Longitude:           sf.Longitude,
		Phone:               sf.Phone,
		WhatsApp:            sf.WhatsApp,
		HeroTitle:           sf.HeroTitle,
		HeroSubtitle:        sf.HeroSubtitle,
		Description:         sf.Description,
		SEOTitle:            sf.SEOTitle,
		SEODescription:      sf.SEODescription,
		FAQs:                sf.FAQs,
		ServiceAreas:        sf.ServiceAreas,
		Differentiator:      sf.Differentiator,
		ExternalDirectoryID: sf.ExternalDirectoryID,
		ExternalReviewCount: sf.ExternalReviewCount,
		OpeningHours:        sf.OpeningHours,
		CoverURL:            sf.CoverURL,
		IsActive:            sf.IsActive,
		LastSyncedAt:        sf.LastSyncedAt,
		CreatedAt:           sf.CreatedAt,
		UpdatedAt:           sf.UpdatedAt,
	}
	if sf.ExternalRating != nil {
		rating := sf.ExternalRating.InexactFloat64()
		dto.ExternalRating = &rating
	}
	return dto
}

type imageDTO struct {
	ID         uuid.UUID       `json:"id"`
	URL        string          `json:"url"`
	AltText    string          `json:"alt_text"`
	Role       enums.ImageRole `json:"role"`
	Order      int             `json:"order"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	IsExternal bool            `json:"is_external"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newImageDTO(img *models.StoreImage) imageDTO {
	return imageDTO{
		ID:         img.ID,
		URL:        img.URL,
		AltText:    img.AltText,
		Role:       img.Role,
		Order:      img.Order,
		Width:      img.Width,
		Height:     img.Height,
		IsExternal: img.IsExternal(),
		CreatedAt:  img.CreatedAt,
	}
}

type storefrontListResponse struct {
	Items      []storefrontDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
