package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Normal Title", "Normal Title"},
		{"colon", "Title: With Colon", "Title- With Colon"},
		{"slashes", "Path/With\\Slashes", "Path-With-Slashes"},
		{"reserved removed", "What? \"Quoted\" <Angle>|Pipe", "What Quoted Angle-Pipe"},
		{"trim whitespace", "  Spaces  ", "Spaces"},
		{"trim dots", "...dots...", "dots"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Simple", "simple"},
		{"With Spaces", "with_spaces"},
		{"With-Hyphens", "with-hyphens"},
		{"Mixed123ABC", "mixed123abc"},
		{"", "unknown"},
		{"!!!", "unknown"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
