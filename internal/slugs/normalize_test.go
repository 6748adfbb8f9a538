package slugs

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Plomería Núñez", "plomeria-nunez"},
		{"  Café   Niño  ", "cafe-nino"},
		{"Hello---World", "hello-world"},
		{"ÁÉÍÓÚ 123", "aeiou-123"},
		{"---", Fallback},
		{"", Fallback},
		{"¡¿!?", Fallback},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	inputs := []string{"Über Straße № 5", "日本語 shop", "a_b.c/d", "Ça va?"}
	for _, in := range inputs {
		got := Normalize(in)
		if got == "" {
			t.Fatalf("empty slug for %q", in)
		}
		for i, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			if !ok {
				t.Fatalf("slug %q for %q has invalid rune %q", got, in, r)
			}
			if r == '-' && (i == 0 || i == len(got)-1) {
				t.Fatalf("slug %q for %q has edge hyphen", got, in)
			}
		}
	}
}
