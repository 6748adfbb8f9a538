package slugs

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name normalizes to nothing.
const Fallback = "item"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Normalize turns a display name into a URL slug made of [a-z0-9-]:
// diacritics are stripped, separators collapse to single hyphens and
// leading/trailing hyphens are trimmed. An empty result becomes "item".
func Normalize(value string) string {
	ascii := stripMarks(value)
	if normalized, err := slug.Normalize(ascii); err == nil && normalized != "" {
		ascii = normalized
	}

	out := strings.ToLower(ascii)
	out = strings.NewReplacer("_", "-", " ", "-", ".", "-", "/", "-").Replace(out)
	out = invalidChars.ReplaceAllString(out, "")
	out = hyphenRuns.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		return Fallback
	}
	return out
}

func stripMarks(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}
