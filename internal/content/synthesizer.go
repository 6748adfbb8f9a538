package content

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefronts/pkg/copywriter"
	"github.com/angelmondragon/storefronts/pkg/enums"
	"github.com/angelmondragon/storefronts/pkg/logger"
	"github.com/angelmondragon/storefronts/pkg/types"
)

// Generator produces a raw copy draft for a business.
type Generator interface {
	Generate(ctx context.Context, brief copywriter.Brief) (*copywriter.Draft, error)
}

// Synthesizer merges generated copy with template fallbacks.
type Synthesizer struct {
	generator Generator
	logg      *logger.Logger
}

// NewSynthesizer builds a synthesizer; a nil generator always yields fallback copy.
func NewSynthesizer(generator Generator, logg *logger.Logger) *Synthesizer {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Synthesizer{generator: generator, logg: logg}
}

// Synthesize never fails: generator errors and sub-threshold lists are
// replaced by templates and recorded in Source.
func (s *Synthesizer) Synthesize(ctx context.Context, p Profile) MarketingCopy {
	draft := s.generate(ctx, p)
	if draft == nil {
		out := fallbackCopy(p)
		finalize(&out)
		return out
	}

	fellBack := false
	pick := func(value string, fallback func(Profile) string) string {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
		fellBack = true
		return fallback(p)
	}

	out := MarketingCopy{
		HeroTitle:      pick(draft.HeroTitle, fallbackHeroTitle),
		HeroSubtitle:   pick(draft.HeroSubtitle, fallbackHeroSubtitle),
		Description:    pick(draft.Description, fallbackDescription),
		SEOTitle:       pick(draft.SEOTitle, fallbackSEOTitle),
		SEODescription: pick(draft.SEODescription, fallbackSEODescription),
	}

	if services := acceptedServices(draft.Services); len(services) >= MinAcceptedServices {
		out.Services = services
	} else {
		fellBack = true
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"accepted": len(services), "required": MinAcceptedServices}),
			"content.services_below_threshold")
		out.Services = FallbackServices(p)
	}

	if faqs := acceptedFAQs(draft.FAQs); len(faqs) >= MinAcceptedFAQs {
		out.FAQs = faqs
	} else {
		fellBack = true
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"accepted": len(faqs), "required": MinAcceptedFAQs}),
			"content.faqs_below_threshold")
		out.FAQs = FallbackFAQs(p)
	}

	out.Source = enums.ContentSourceAI
	if fellBack {
		out.Source = enums.ContentSourceMixed
	}
	finalize(&out)
	return out
}

func (s *Synthesizer) generate(ctx context.Context, p Profile) *copywriter.Draft {
	if s.generator == nil {
		return nil
	}
	draft, err := s.generator.Generate(ctx, copywriter.Brief{
		Name:           p.Name,
		Category:       p.Category,
		City:           p.City,
		Region:         p.Region,
		Differentiator: p.Differentiator,
		ServiceAreas:   p.ServiceAreas,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		ReviewSnippets: p.ReviewSnippets,
	})
	if err != nil {
		s.logg.WarnErr(ctx, "content.generator_failed", err)
		return nil
	}
	return draft
}

func fallbackCopy(p Profile) MarketingCopy {
	return MarketingCopy{
		HeroTitle:      fallbackHeroTitle(p),
		HeroSubtitle:   fallbackHeroSubtitle(p),
		Description:    fallbackDescription(p),
		SEOTitle:       fallbackSEOTitle(p),
		SEODescription: fallbackSEODescription(p),
		Services:       FallbackServices(p),
		FAQs:           FallbackFAQs(p),
		Source:         enums.ContentSourceFallback,
	}
}

func finalize(mc *MarketingCopy) {
	applyLimits(mc)
	mc.FAQs = correctHours(mc.FAQs)
}

func acceptedServices(drafts []copywriter.ServiceDraft) []ServiceCopy {
	out := make([]ServiceCopy, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		out = append(out, ServiceCopy{
			Name:             d.Name,
			ShortDescription: d.ShortDescription,
			LongDescription:  d.LongDescription,
			SEODescription:   orDefault(d.SEODescription, d.ShortDescription),
		})
		if len(out) == maxGeneratedServices {
			break
		}
	}
	return out
}

func acceptedFAQs(drafts []copywriter.FAQDraft) []types.FAQ {
	out := make([]types.FAQ, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || strings.TrimSpace(d.Answer) == "" {
			continue
		}
		out = append(out, types.FAQ{Question: d.Question, Answer: d.Answer})
		if len(out) == maxGeneratedFAQs {
			break
		}
	}
	return out
}
