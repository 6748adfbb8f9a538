package content

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/angelmondragon/storefronts/pkg/types"
)

type serviceTemplate struct {
	keywords []string
	services []string
}

// serviceCatalog is matched in order against the lower-cased, accent-free
// category; the last entry is the catch-all.
var serviceCatalog = []serviceTemplate{
	{
		keywords: []string{"plumb", "plomer", "fontaner"},
		services: []string{"Leak Detection and Repair", "Drain Cleaning", "Water Heater Installation", "Pipe Replacement", "Emergency Plumbing"},
	},
	{
		keywords: []string{"electric"},
		services: []string{"Electrical Repairs", "Wiring and Rewiring", "Lighting Installation", "Panel Upgrades", "Electrical Inspections"},
	},
	{
		keywords: []string{"dent", "odontolog"},
		services: []string{"Dental Checkups", "Teeth Cleaning", "Fillings", "Teeth Whitening", "Orthodontics"},
	},
	{
		keywords: []string{"restaurant", "restaurante", "cafe", "bakery", "panader", "taqueria", "food", "comida"},
		services: []string{"Dine-In", "Takeout", "Catering", "Private Events", "Daily Specials"},
	},
	{
		keywords: []string{"salon", "beauty", "belleza", "barber", "estetica", "spa", "nail", "unas"},
		services: []string{"Haircuts and Styling", "Hair Coloring", "Manicure and Pedicure", "Facial Treatments", "Bridal Packages"},
	},
	{
		keywords: []string{"mechanic", "mecanic", "taller", "auto", "car_repair", "car repair"},
		services: []string{"General Maintenance", "Brake Service", "Engine Diagnostics", "Oil Change", "Suspension Repair"},
	},
	{
		keywords: []string{"clean", "limpieza"},
		services: []string{"Residential Cleaning", "Office Cleaning", "Deep Cleaning", "Move-In and Move-Out Cleaning", "Carpet and Upholstery Cleaning"},
	},
	{
		services: []string{"Consultations", "Personalized Quotes", "Professional Service", "Follow-Up Support"},
	},
}

// FallbackServices returns the category-keyed default service list.
func FallbackServices(p Profile) []ServiceCopy {
	key := fold(p.Category)
	names := serviceCatalog[len(serviceCatalog)-1].services
	for _, tpl := range serviceCatalog {
		if len(tpl.keywords) == 0 {
			continue
		}
		if containsAny(key, tpl.keywords) {
			names = tpl.services
			break
		}
	}

	where := locationPhrase(p)
	out := make([]ServiceCopy, 0, len(names))
	for _, name := range names {
		short := fmt.Sprintf("%s by %s%s.", name, displayName(p), where)
		out = append(out, ServiceCopy{
			Name:             name,
			ShortDescription: short,
			LongDescription:  fmt.Sprintf("%s Contact us to learn more about our %s service and request a personalized quote.", short, strings.ToLower(name)),
			SEODescription:   short,
		})
	}
	return out
}

// FallbackFAQs returns the default FAQ list parameterized by the profile.
func FallbackFAQs(p Profile) []types.FAQ {
	name := displayName(p)
	category := categoryPhrase(p)
	where := locationPhrase(p)

	areas := where
	if len(p.ServiceAreas) > 0 {
		areas = " in " + strings.Join(p.ServiceAreas, ", ")
	}
	why := fmt.Sprintf("%s combines experience, fair prices and attentive service for every customer.", name)
	if d := strings.TrimSpace(p.Differentiator); d != "" {
		why = d
	}

	return []types.FAQ{
		{
			Question: fmt.Sprintf("What services does %s offer?", name),
			Answer:   fmt.Sprintf("%s offers %s services%s. See our services list or contact us for details.", name, category, where),
		},
		{
			Question: "Which areas do you serve?",
			Answer:   fmt.Sprintf("We serve customers%s.", orDefault(areas, " in our local area")),
		},
		{
			Question: "How can I request a quote?",
			Answer:   "Call us or send us a message and we will prepare a quote for your needs.",
		},
		{
			Question: "What are your opening hours?",
			Answer:   HoursContactDirective,
		},
		{
			Question: fmt.Sprintf("Why choose %s?", name),
			Answer:   why,
		},
		{
			Question: "Which payment methods do you accept?",
			Answer:   "Contact us to confirm the payment methods currently available.",
		},
		{
			Question: fmt.Sprintf("How can I contact %s?", name),
			Answer:   "Use the phone number or messaging button on this page and our team will get back to you.",
		},
	}
}

func fallbackHeroTitle(p Profile) string {
	if c := strings.TrimSpace(p.Category); c != "" {
		return fmt.Sprintf("%s%s", c, locationPhrase(p))
	}
	return displayName(p)
}

func fallbackHeroSubtitle(p Profile) string {
	base := fmt.Sprintf("%s offers trusted %s services%s.", displayName(p), categoryPhrase(p), locationPhrase(p))
	if p.Rating > 0 && p.ReviewCount > 0 {
		return fmt.Sprintf("%s Rated %.1f/5 by %d customers.", base, p.Rating, p.ReviewCount)
	}
	return base
}

func fallbackDescription(p Profile) string {
	desc := fmt.Sprintf("%s is a %s business%s.", displayName(p), categoryPhrase(p), locationPhrase(p))
	if d := strings.TrimSpace(p.Differentiator); d != "" {
		desc += " " + d
	}
	return desc + " Contact us today to find out how we can help."
}

func fallbackSEOTitle(p Profile) string {
	if c := strings.TrimSpace(p.Category); c != "" {
		return fmt.Sprintf("%s | %s%s", displayName(p), c, locationPhrase(p))
	}
	return displayName(p)
}

func fallbackSEODescription(p Profile) string {
	return fmt.Sprintf("%s offers %s services%s. Contact us for information and quotes.", displayName(p), categoryPhrase(p), locationPhrase(p))
}

func displayName(p Profile) string {
	return orDefault(strings.TrimSpace(p.Name), "Our business")
}

func categoryPhrase(p Profile) string {
	return orDefault(strings.ToLower(strings.TrimSpace(p.Category)), "professional")
}

func locationPhrase(p Profile) string {
	if c := strings.TrimSpace(p.City); c != "" {
		return " in " + c
	}
	return ""
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return strings.ToLower(stripMarks(strings.TrimSpace(s)))
}

func stripMarks(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}
