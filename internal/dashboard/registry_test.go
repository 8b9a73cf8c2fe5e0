package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundseeker/seekerctl/internal/types"
)

func newTestRegistry(svc *fakeService) (*Registry, *LogBuffer, *errorLog) {
	log := NewLogBuffer(100)
	errs := &errorLog{}
	return NewRegistry(svc, InlineRunner{}, log, errs.sink), log, errs
}

func TestRegistry_AddBlankMakesNoCall(t *testing.T) {
	svc := newFakeService()
	r, log, _ := newTestRegistry(svc)

	r.Add("")
	r.Add("   ")
	r.Add("\t\n")

	assert.Zero(t, svc.count("add"))
	assert.Zero(t, svc.count("playlists"))
	assert.Zero(t, log.Len())
}

func TestRegistry_AddSuccessRefreshesAndLogs(t *testing.T) {
	svc := newFakeService()
	svc.playlists = []types.PlaylistEntry{{URL: "https://open.spotify.com/playlist/abc"}}
	r, log, _ := newTestRegistry(svc)

	r.Add("  https://open.spotify.com/playlist/abc  ")

	assert.Equal(t, []string{"https://open.spotify.com/playlist/abc"}, svc.urls)
	assert.Equal(t, 1, svc.count("playlists"))
	require.Equal(t, 1, log.Len())
	assert.Equal(t, types.LevelInfo, log.Entries()[0].Level)
	assert.Equal(t, "Playlist successfully added", log.Entries()[0].Message)

	st := r.State()
	assert.Equal(t, PlaylistsLoaded, st.Phase)
	assert.Len(t, st.Entries, 1)
}

func TestRegistry_AddRejectedDoesNotRefresh(t *testing.T) {
	svc := newFakeService()
	svc.results["add"] = types.CommandResult{Success: false, Message: "duplicate"}
	r, log, _ := newTestRegistry(svc)

	r.Add("http://x")

	require.Equal(t, 1, log.Len())
	entry := log.Entries()[0]
	assert.Equal(t, types.LevelError, entry.Level)
	assert.Contains(t, entry.Message, "duplicate")
	assert.Equal(t, "Error adding playlist: duplicate", entry.Message)
	assert.Zero(t, svc.count("playlists"))
}

func TestRegistry_AddTransportFailure(t *testing.T) {
	svc := newFakeService()
	svc.errs["add"] = errors.New("connection reset")
	r, log, errs := newTestRegistry(svc)

	r.Add("https://open.spotify.com/playlist/abc")

	require.Equal(t, 1, log.Len())
	assert.Equal(t, types.LevelError, log.Entries()[0].Level)
	assert.Equal(t, "Error while adding playlist", log.Entries()[0].Message)
	assert.Equal(t, 1, errs.Len())
	assert.Zero(t, svc.count("playlists"))
}

func TestRegistry_Remove(t *testing.T) {
	svc := newFakeService()
	r, log, _ := newTestRegistry(svc)

	r.Remove("https://open.spotify.com/playlist/abc")
	assert.Equal(t, 1, svc.count("playlists"))
	assert.Equal(t, "Playlist successfully removed", log.Entries()[0].Message)

	svc.results["remove"] = types.CommandResult{Success: false, Message: "Playlist not found"}
	r.Remove("https://open.spotify.com/playlist/abc")
	assert.Equal(t, "Error removing playlist: Playlist not found", log.Entries()[1].Message)

	delete(svc.results, "remove")
	svc.errs["remove"] = errors.New("boom")
	r.Remove("https://open.spotify.com/playlist/abc")
	assert.Equal(t, "Error while removing playlist", log.Entries()[2].Message)

	assert.Equal(t, 1, svc.count("playlists"))
}

func TestRegistry_RefreshStates(t *testing.T) {
	svc := newFakeService()
	r, log, errs := newTestRegistry(svc)
	assert.Equal(t, PlaylistsLoading, r.State().Phase)

	var phases []PlaylistPhase
	r.Subscribe(func(st PlaylistState) { phases = append(phases, st.Phase) })

	r.Refresh()
	assert.Equal(t, PlaylistsEmpty, r.State().Phase)
	assert.Nil(t, r.State().Entries)

	svc.playlists = []types.PlaylistEntry{{URL: "a"}, {URL: "b"}}
	r.Refresh()
	assert.Equal(t, PlaylistsLoaded, r.State().Phase)
	assert.Len(t, r.State().Entries, 2)

	svc.playlistErr = errors.New("unreachable")
	r.Refresh()
	st := r.State()
	assert.Equal(t, PlaylistsFailed, st.Phase)
	assert.Nil(t, st.Entries)
	assert.Error(t, st.Err)

	assert.Equal(t, []PlaylistPhase{PlaylistsEmpty, PlaylistsLoaded, PlaylistsFailed}, phases)
	assert.Equal(t, 1, errs.Len())
	assert.Zero(t, log.Len(), "refresh failures are not operator-visible")
}

func TestPlaylistPhase_String(t *testing.T) {
	assert.Equal(t, "loading", PlaylistsLoading.String())
	assert.Equal(t, "empty", PlaylistsEmpty.String())
	assert.Equal(t, "failed", PlaylistsFailed.String())
	assert.Equal(t, "loaded", PlaylistsLoaded.String())
}
