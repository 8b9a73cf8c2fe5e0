package utils

import (
	"testing"
)

func TestFormatPlaylistURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "Long id is abbreviated",
			url:      "https://x.test/playlist/1234567890123",
			expected: "...1234567890",
		},
		{
			name:     "Short id is kept",
			url:      "https://x.test/p/abc",
			expected: "abc",
		},
		{
			name:     "Query string stripped before length check",
			url:      "https://x.test/p/abc?utm=1",
			expected: "abc",
		},
		{
			name:     "Exactly ten characters",
			url:      "https://x.test/p/0123456789",
			expected: "0123456789",
		},
		{
			name:     "Long id with query",
			url:      "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abcdef",
			expected: "...37i9dQZF1D",
		},
		{
			name:     "Bare id without slashes",
			url:      "abc",
			expected: "abc",
		},
		{
			name:     "Trailing slash yields empty label",
			url:      "https://x.test/p/",
			expected: "",
		},
		{
			name:     "Empty input",
			url:      "",
			expected: "",
		},
		{
			name:     "Multibyte id counted by character",
			url:      "https://x.test/p/äöüäöüäöüäöü",
			expected: "...äöüäöüäöüä",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPlaylistURL(tt.url); got != tt.expected {
				t.Errorf("FormatPlaylistURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestFormatPlaylistURL_Deterministic(t *testing.T) {
	url := "https://x.test/playlist/1234567890123?si=1"
	first := FormatPlaylistURL(url)
	for i := 0; i < 5; i++ {
		if got := FormatPlaylistURL(url); got != first {
			t.Fatalf("call %d returned %q, first call returned %q", i, got, first)
		}
	}
}
