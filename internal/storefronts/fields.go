package storefronts

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefronts/internal/content"
	"github.com/angelmondragon/storefronts/internal/reviews"
	"github.com/angelmondragon/storefronts/internal/slugs"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/places"
	"github.com/angelmondragon/storefronts/pkg/types"
)

// CoreFields are the directory-derived and synthesized storefront columns.
type CoreFields struct {
	Name                string
	Category            string
	Address             string
	City                string
	Region              string
	PostalCode          string
	Latitude            *float64
	Longitude           *float64
	Phone               *string
	HeroTitle           string
	HeroSubtitle        string
	Description         string
	SEOTitle            string
	SEODescription      string
	FAQs                types.FAQList
	ExternalRating      *decimal.Decimal
	ExternalReviewCount int
	OpeningHours        types.OpeningHours
}

// ApplyCopy copies synthesized marketing copy into the fields.
func (f *CoreFields) ApplyCopy(mc content.MarketingCopy) {
	f.HeroTitle = mc.HeroTitle
	f.HeroSubtitle = mc.HeroSubtitle
	f.Description = mc.Description
	f.SEOTitle = mc.SEOTitle
	f.SEODescription = mc.SEODescription
	f.FAQs = types.FAQList(mc.FAQs)
}

func (f CoreFields) model() models.Storefront {
	return models.Storefront{
		Name:                f.Name,
		Category:            f.Category,
		CategorySlug:        f.CategorySlug(),
		Address:             f.Address,
		City:                f.City,
		CitySlug:            f.CitySlug(),
		Region:              f.Region,
		PostalCode:          f.PostalCode,
		Latitude:            f.Latitude,
		Longitude:           f.Longitude,
		Phone:               f.Phone,
		HeroTitle:           f.HeroTitle,
		HeroSubtitle:        f.HeroSubtitle,
		Description:         f.Description,
		SEOTitle:            f.SEOTitle,
		SEODescription:      f.SEODescription,
		FAQs:                f.FAQs,
		ExternalRating:      f.ExternalRating,
		ExternalReviewCount: f.ExternalReviewCount,
		OpeningHours:        f.OpeningHours,
	}
}

// CategorySlug is the normalized category used in listing paths.
func (f CoreFields) CategorySlug() string {
	return optionalSlug(f.Category)
}

// CitySlug is the normalized city used in listing paths.
func (f CoreFields) CitySlug() string {
	return optionalSlug(f.City)
}

// NewStorefront builds an unsaved storefront from the fields.
func (f CoreFields) NewStorefront() *models.Storefront {
	sf := f.model()
	return &sf
}

func optionalSlug(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return slugs.Normalize(value)
}

// Snapshot is everything one directory fetch yields for a storefront.
type Snapshot struct {
	PlaceID string
	Core    CoreFields
	Reviews []reviews.Review
	Photos  []places.Photo
}

// SnapshotFromPlace maps a directory record onto storefront fields.
func SnapshotFromPlace(p *places.PlaceDetails) Snapshot {
	if p == nil {
		return Snapshot{}
	}
	core := CoreFields{
		Name:                strings.TrimSpace(p.Name),
		Category:            categoryLabel(p),
		Address:             p.FormattedAddress,
		City:                p.City(),
		Region:              p.Component("administrative_area_level_1"),
		PostalCode:          p.Component("postal_code"),
		Phone:               phone(p),
		ExternalReviewCount: p.UserRatingCount,
		OpeningHours:        openingHours(p.OpeningHours),
	}
	if p.Location != nil {
		lat, lng := p.Location.Latitude, p.Location.Longitude
		core.Latitude = &lat
		core.Longitude = &lng
	}
	if p.Rating > 0 {
		rating := decimal.NewFromFloat(p.Rating).Round(1)
		core.ExternalRating = &rating
	}

	revs := make([]reviews.Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		revs = append(revs, reviews.Review{
			AuthorName:     r.AuthorName,
			AuthorPhotoURL: r.AuthorPhotoURI,
			Rating:         r.Rating,
			Text:           r.Text,
		})
	}
	return Snapshot{PlaceID: p.PlaceID, Core: core, Reviews: revs, Photos: p.Photos}
}

// Profile builds the synthesis input from the snapshot and the operator
// fields stored on the storefront.
func (s Snapshot) Profile(sf *models.Storefront) content.Profile {
	p := content.Profile{
		Name:        s.Core.Name,
		Category:    s.Core.Category,
		City:        s.Core.City,
		Region:      s.Core.Region,
		ReviewCount: s.Core.ExternalReviewCount,
	}
	if s.Core.ExternalRating != nil {
		p.Rating = s.Core.ExternalRating.InexactFloat64()
	}
	if sf != nil {
		if sf.Differentiator != nil {
			p.Differentiator = *sf.Differentiator
		}
		p.ServiceAreas = []string(sf.ServiceAreas)
	}
	for _, r := range s.Reviews {
		if strings.TrimSpace(r.Text) == "" || r.Rating < reviews.MinRating {
			continue
		}
		p.ReviewSnippets = append(p.ReviewSnippets, content.Truncate(r.Text, 280))
		if len(p.ReviewSnippets) == 5 {
			break
		}
	}
	return p
}

func categoryLabel(p *places.PlaceDetails) string {
	if label := strings.TrimSpace(p.PrimaryTypeLabel); label != "" {
		return label
	}
	words := strings.Fields(strings.ReplaceAll(p.PrimaryType, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func phone(p *places.PlaceDetails) *string {
	value := strings.TrimSpace(p.InternationalPhone)
	if value == "" {
		value = strings.TrimSpace(p.Phone)
	}
	if value == "" {
		return nil
	}
	return &value
}

func openingHours(h places.OpeningHours) types.OpeningHours {
	out := types.OpeningHours{WeekdayDescriptions: h.WeekdayDescriptions}
	for _, period := range h.Periods {
		op := types.OpeningPeriod{
			OpenDay:  period.OpenDay,
			OpenTime: clock(period.OpenHour, period.OpenMinute),
			CloseDay: period.OpenDay,
		}
		if period.Close != nil {
			op.CloseDay = period.Close.Day
			op.CloseTime = clock(period.Close.Hour, period.Close.Minute)
		}
		out.Periods = append(out.Periods, op)
	}
	return out
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d%02d", hour, minute)
}
