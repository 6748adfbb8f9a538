package content

import (
	"github.com/angelmondragon/storefronts/pkg/enums"
	"github.com/angelmondragon/storefronts/pkg/types"
)

// Field length ceilings, in runes.
const (
	MaxSEOTitle          = 70
	MaxSEODescription    = 160
	MaxHeroTitle         = 100
	MaxHeroSubtitle      = 200
	MaxServiceShort      = 160
	MaxServiceSEO        = 160
	MaxFAQAnswer         = 500
	MinAcceptedServices  = 4
	MinAcceptedFAQs      = 6
	maxGeneratedServices = 8
	maxGeneratedFAQs     = 10
)

// Profile is the business data copy is written from.
type Profile struct {
	Name           string
	Category       string
	City           string
	Region         string
	Differentiator string
	ServiceAreas   []string
	Rating         float64
	ReviewCount    int
	ReviewSnippets []string
}

// MarketingCopy is validated storefront copy ready to persist.
type MarketingCopy struct {
	HeroTitle      string
	HeroSubtitle   string
	Description    string
	SEOTitle       string
	SEODescription string
	Services       []ServiceCopy
	FAQs           []types.FAQ
	Source         enums.ContentSource
}

// ServiceCopy is one service entry before slug allocation.
type ServiceCopy struct {
	Name             string
	ShortDescription string
	LongDescription  string
	SEODescription   string
}
