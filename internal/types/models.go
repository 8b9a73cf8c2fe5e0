package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soundseeker/seekerctl/internal/utils"
)

// DownloadStatus is the server's view of the current download run.
// It is always replaced as a whole, never patched field by field.
type DownloadStatus struct {
	Running         bool   `json:"running"`
	Paused          bool   `json:"paused"` // Only meaningful while Running
	TotalTracks     int    `json:"total_tracks"`
	ProcessedTracks int    `json:"processed_tracks"`
	CurrentTrack    string `json:"current_track"`  // Empty until the first track is picked up
	CurrentMethod   string `json:"current_method"` // e.g. "Usenet", "SpotDL"

	// Seq is an optional emission counter attached by servers that support
	// ordered status delivery. Zero means "not provided".
	Seq uint64 `json:"seq,omitempty"`
}

// LogLevel is the severity attached to a LogEntry. Servers may send levels
// beyond the ones declared here; they are kept verbatim.
type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

// SystemTimestamp marks log entries produced by the client rather than the server.
const SystemTimestamp = "System"

// LogEntry is a single operator-visible log line
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
}

func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Level, e.Message)
}

// PlaylistEntry is one playlist source registered on the server, keyed by URL.
type PlaylistEntry struct {
	URL         string `json:"url"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Image       string `json:"image,omitempty"`
	TracksTotal int    `json:"tracks_total,omitempty"`
}

// UnmarshalJSON accepts both the detailed object form and the degraded form
// where the server lists playlists as bare URL strings.
func (p *PlaylistEntry) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*p = PlaylistEntry{URL: raw}
		return nil
	}

	type plain PlaylistEntry
	var aux plain
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PlaylistEntry(aux)
	return nil
}

// Title returns the friendly name, falling back to a label derived from the URL.
func (p PlaylistEntry) Title() string {
	if p.Name != "" {
		return p.Name
	}
	return utils.FormatPlaylistURL(p.URL)
}

func (p PlaylistEntry) OwnerLabel() string {
	if p.Owner == "" {
		return ""
	}
	return "by " + p.Owner
}

func (p PlaylistEntry) TracksLabel() string {
	if p.TracksTotal <= 0 {
		return ""
	}
	return fmt.Sprintf("%d Songs", p.TracksTotal)
}

// Artists holds a track's artist credit. The server sends either a single
// string or a list of names.
type Artists string

func (a *Artists) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Artists(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = Artists(strings.Join(list, ", "))
	return nil
}

// Track is a recently downloaded song
type Track struct {
	Name    string  `json:"name"`
	Artists Artists `json:"artists"`
	Image   string  `json:"image,omitempty"`
}

// SongRef identifies a song in the server's archive
type SongRef struct {
	ID string `json:"id"`
}

// DownloadsSnapshot is the point-in-time answer of GET /api/downloads.
// Status is nil when the server omitted it.
type DownloadsSnapshot struct {
	Status          *DownloadStatus `json:"status"`
	DownloadedSongs []SongRef       `json:"downloaded_songs"`
	RecentTracks    []Track         `json:"recent_tracks"`
}

// CommandResult is the body returned by control and playlist mutation endpoints.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
