package utils

import (
	"strings"
)

// PlaylistLabelMaxLen is the number of id characters kept by FormatPlaylistURL
// before the label is abbreviated.
const PlaylistLabelMaxLen = 10

// FormatPlaylistURL derives a short display label from a playlist URL.
// The label is the trailing path segment with any query string removed.
// Ids longer than PlaylistLabelMaxLen are cut and prefixed with "...".
// Example: https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=x -> ...37i9dQZF1D
func FormatPlaylistURL(rawURL string) string {
	id := rawURL
	if idx := strings.LastIndex(id, "/"); idx != -1 {
		id = id[idx+1:]
	}
	if idx := strings.Index(id, "?"); idx != -1 {
		id = id[:idx]
	}

	runes := []rune(id)
	if len(runes) > PlaylistLabelMaxLen {
		return "..." + string(runes[:PlaylistLabelMaxLen])
	}
	return id
}
