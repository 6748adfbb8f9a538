package validators

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeStringCountsRunes(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		max   int
		want  string
		runes int
	}{
		{name: "trims", in: "  Centro  ", max: 20, want: "Centro", runes: 6},
		{name: "multibyte at the cap", in: strings.Repeat("a", 119) + "ñ", max: 120, want: strings.Repeat("a", 119) + "ñ", runes: 120},
		{name: "cut after multibyte", in: strings.Repeat("ñ", 130), max: 120, want: strings.Repeat("ñ", 120), runes: 120},
		{name: "no cap", in: "Peñón", max: 0, want: "Peñón", runes: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeString(tc.in, tc.max)
			if !utf8.ValidString(got) {
				t.Fatalf("invalid utf-8 %q", got)
			}
			if got != tc.want || utf8.RuneCountInString(got) != tc.runes {
				t.Fatalf("SanitizeString(%q, %d) = %q", tc.in, tc.max, got)
			}
		})
	}
}
