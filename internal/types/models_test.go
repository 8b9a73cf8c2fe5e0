package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistEntry_DecodesMixedForms(t *testing.T) {
	body := `[
		{"url": "https://open.spotify.com/playlist/abc", "name": "Road Trip", "owner": "sam", "tracks_total": 12, "image": "https://i.test/c.jpg"},
		"https://open.spotify.com/playlist/1234567890123?si=x"
	]`

	var entries []PlaylistEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "Road Trip", entries[0].Title())
	assert.Equal(t, "by sam", entries[0].OwnerLabel())
	assert.Equal(t, "12 Songs", entries[0].TracksLabel())

	assert.Equal(t, "https://open.spotify.com/playlist/1234567890123?si=x", entries[1].URL)
	assert.Equal(t, "...1234567890", entries[1].Title())
	assert.Empty(t, entries[1].OwnerLabel())
	assert.Empty(t, entries[1].TracksLabel())
}

func TestPlaylistEntry_RejectsGarbage(t *testing.T) {
	var p PlaylistEntry
	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
}

func TestDownloadStatus_MissingFieldsDefault(t *testing.T) {
	var s DownloadStatus
	require.NoError(t, json.Unmarshal([]byte(`{"running": true}`), &s))

	assert.True(t, s.Running)
	assert.False(t, s.Paused)
	assert.Zero(t, s.TotalTracks)
	assert.Zero(t, s.ProcessedTracks)
	assert.Empty(t, s.CurrentTrack)
	assert.Zero(t, s.Seq)
}

func TestDownloadsSnapshot_StatusOptional(t *testing.T) {
	var snap DownloadsSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"downloaded_songs": [{"id": "a"}, {"id": "b"}]}`), &snap))

	assert.Nil(t, snap.Status)
	assert.Len(t, snap.DownloadedSongs, 2)
	assert.Empty(t, snap.RecentTracks)
}

func TestTrack_ArtistsStringOrList(t *testing.T) {
	var tracks []Track
	body := `[{"name": "One", "artists": "Solo"}, {"name": "Two", "artists": ["A", "B"]}]`
	require.NoError(t, json.Unmarshal([]byte(body), &tracks))

	assert.Equal(t, Artists("Solo"), tracks[0].Artists)
	assert.Equal(t, Artists("A, B"), tracks[1].Artists)
}

func TestLogEntry_String(t *testing.T) {
	e := LogEntry{Timestamp: SystemTimestamp, Level: LevelInfo, Message: "Download paused"}
	assert.Equal(t, "[System] INFO: Download paused", e.String())
}
