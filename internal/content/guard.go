package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/storefronts/pkg/types"
)

// HoursContactDirective replaces any generated answer about opening hours.
const HoursContactDirective = "Please contact us directly to confirm our current opening hours."

var hoursWords = map[string]struct{}{
	"hour": {}, "hours": {}, "open": {}, "opens": {}, "opened": {}, "opening": {},
	"close": {}, "closes": {}, "closed": {}, "closing": {}, "schedule": {}, "schedules": {},
	"horario": {}, "horarios": {}, "hora": {}, "horas": {}, "abren": {}, "abre": {},
	"cierran": {}, "cierra": {}, "abierto": {}, "abierta": {}, "cerrado": {}, "cerrada": {},
}

// Truncate cuts s to at most max runes without splitting a character.
// Surrounding whitespace is trimmed before measuring, never after the cut.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// IsHoursQuestion reports whether a FAQ question asks about opening hours.
// Only whole words count, so "closest" or "openly" do not match.
func IsHoursQuestion(question string) bool {
	words := strings.FieldsFunc(strings.ToLower(stripMarks(question)), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if _, ok := hoursWords[word]; ok {
			return true
		}
	}
	return false
}

// correctHours overwrites answers to hours questions; generated hours are
// not trusted because the directory schedule is shown separately.
func correctHours(faqs []types.FAQ) []types.FAQ {
	for i := range faqs {
		if IsHoursQuestion(faqs[i].Question) {
			faqs[i].Answer = HoursContactDirective
		}
	}
	return faqs
}

func applyLimits(mc *MarketingCopy) {
	mc.HeroTitle = Truncate(mc.HeroTitle, MaxHeroTitle)
	mc.HeroSubtitle = Truncate(mc.HeroSubtitle, MaxHeroSubtitle)
	mc.Description = strings.TrimSpace(mc.Description)
	mc.SEOTitle = Truncate(mc.SEOTitle, MaxSEOTitle)
	mc.SEODescription = Truncate(mc.SEODescription, MaxSEODescription)
	for i := range mc.Services {
		svc := &mc.Services[i]
		svc.Name = strings.TrimSpace(svc.Name)
		svc.ShortDescription = Truncate(svc.ShortDescription, MaxServiceShort)
		svc.LongDescription = strings.TrimSpace(svc.LongDescription)
		svc.SEODescription = Truncate(svc.SEODescription, MaxServiceSEO)
	}
	for i := range mc.FAQs {
		mc.FAQs[i].Question = strings.TrimSpace(mc.FAQs[i].Question)
		mc.FAQs[i].Answer = Truncate(mc.FAQs[i].Answer, MaxFAQAnswer)
	}
}
