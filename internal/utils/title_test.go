package utils

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "The Matrix", "the matrix"},
		{"trim", "  Dune  ", "dune"},
		{"accents stripped", "Amélie", "amelie"},
		{"diacritics stripped", "Léon: The Professional", "leon: the professional"},
		{"already normalized", "fargo", "fargo"},
		{"empty", "", ""},
		{"non latin preserved", "七人の侍", "七人の侍"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTitle(tc.input); got != tc.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeTitleEquivalence(t *testing.T) {
	// Composed and decomposed forms of the same title must collapse
	// to the same key
	composed := "Amélie"
	decomposed := "Amélie"
	if NormalizeTitle(composed) != NormalizeTitle(decomposed) {
		t.Errorf("Unicode forms diverge: %q vs %q", NormalizeTitle(composed), NormalizeTitle(decomposed))
	}
}
