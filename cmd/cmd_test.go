package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/testutil"
	"github.com/soundseeker/seekerctl/internal/types"
)

// lockedBuffer is read by the test while a command is still writing to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupCLI isolates the settings directory and clears flags left by earlier runs.
func setupCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SEEKERCTL_HOME", home)
	t.Setenv("SEEKERCTL_SERVER", "")
	resetFlags(rootCmd)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &lockedBuffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveServerURL(t *testing.T) {
	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{"127.0.0.1:5000", "http://127.0.0.1:5000", false},
		{"localhost:5000", "http://localhost:5000", false},
		{"[::1]:5000", "http://[::1]:5000", false},
		{"seeker.example:443", "https://seeker.example:443", false},
		{"nas.local", "https://nas.local", false},
		{"http://nas.local:5000/", "http://nas.local:5000", false},
		{"https://seeker.example/base/", "https://seeker.example/base", false},
		{"  http://127.0.0.1:5000  ", "http://127.0.0.1:5000", false},
		{"ftp://nas.local", "", true},
		{"http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := resolveServerURL(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	assert.True(t, isLoopbackHost("localhost"))
	assert.True(t, isLoopbackHost("LOCALHOST"))
	assert.True(t, isLoopbackHost("127.0.0.1"))
	assert.True(t, isLoopbackHost("::1"))
	assert.False(t, isLoopbackHost(""))
	assert.False(t, isLoopbackHost("10.0.0.2"))
	assert.False(t, isLoopbackHost("seeker.example"))
}

func TestLoadEffectiveSettings_ServerFromEnv(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)
	t.Setenv("SEEKERCTL_SERVER", mock.URL())

	out, err := execute(t, "settings", "--json")
	require.NoError(t, err)

	var s config.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, mock.URL(), s.Server.URL)
}

func TestLoadEffectiveSettings_InvalidTransport(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "settings", "--transport", "socketio")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}

func TestSettings_Listing(t *testing.T) {
	home := setupCLI(t)

	out, err := execute(t, "settings", "--server", "nas.local:5000", "--transport", "websocket")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(home, "settings.json"))
	assert.Contains(t, out, "[Server]")
	assert.Contains(t, out, "[Dashboard]")
	assert.Contains(t, out, "https://nas.local:5000")
	assert.Contains(t, out, "websocket")
	assert.Contains(t, out, "30s", "durations print in Go notation")
	assert.Contains(t, out, "system", "adaptive theme prints by name")
	assert.Contains(t, out, "(unset)", "empty metrics address")
}

func TestSettingsInit_WritesFile(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "settings", "init", "--server", "http://nas.local:5000")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	loaded, err := config.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://nas.local:5000", loaded.Server.URL)
}

func TestControl_PauseAndStop(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t, testutil.WithStatus(types.DownloadStatus{Running: true, TotalTracks: 4}))

	out, err := execute(t, "pause", "--server", mock.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "[System] INFO: Download paused")
	assert.True(t, mock.Status().Paused)

	out, err = execute(t, "stop", "--server", mock.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "[System] INFO: Download stopped")
	assert.False(t, mock.Status().Running)
}

func TestControl_StartIsSilent(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)

	out, err := execute(t, "start", "--server", mock.URL())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int64(1), mock.StartCalls.Load())
	assert.True(t, mock.Status().Running)
}

func TestControl_RejectedCommandFails(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)

	out, err := execute(t, "pause", "--server", mock.URL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No download running")
	assert.Empty(t, out)
}

func TestControl_UnreachableServer(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServer()
	url := mock.URL()
	mock.Close()

	_, err := execute(t, "stop", "--server", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error sending stop")
}

func TestPlaylists_List(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t, testutil.WithPlaylists(
		types.PlaylistEntry{URL: testutil.PlaylistPrefix + "playlist/a", Name: "Road Trip", Owner: "ana", TracksTotal: 12},
		testutil.PlaylistPrefix+"playlist/b",
	))

	out, err := execute(t, "playlists", "--server", mock.URL())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "Road Trip")
	assert.Contains(t, lines[1], "ana")
	assert.Contains(t, lines[2], testutil.PlaylistPrefix+"playlist/b")
}

func TestPlaylists_ListEmptyAndFailed(t *testing.T) {
	setupCLI(t)
	empty := testutil.NewMockServerT(t)

	out, err := execute(t, "playlists", "list", "--server", empty.URL())
	require.NoError(t, err)
	assert.Equal(t, "No playlists available\n", out)

	failing := testutil.NewMockServerT(t, testutil.WithFailingPlaylists())
	_, err = execute(t, "pl", "--server", failing.URL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading playlists")
}

func TestPlaylists_AddAndRemove(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)
	url := testutil.PlaylistPrefix + "playlist/new"

	out, err := execute(t, "playlists", "add", "  "+url+"  ", "--server", mock.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "Playlist successfully added")
	assert.Equal(t, []string{url}, mock.PlaylistURLs())

	_, err = execute(t, "playlists", "add", url, "--server", mock.URL())
	require.Error(t, err)
	assert.Equal(t, "Error adding playlist: duplicate", err.Error())

	out, err = execute(t, "playlists", "rm", url, "--server", mock.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "Playlist successfully removed")
	assert.Empty(t, mock.PlaylistURLs())
}

func TestPlaylists_AddBlank(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)

	_, err := execute(t, "playlists", "add", "   ", "--server", mock.URL())
	require.Error(t, err)
	assert.Equal(t, "playlist URL is blank", err.Error())
	assert.Zero(t, mock.AddCalls.Load())
}

func TestLogs_FilterAndTail(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t, testutil.WithLogs(
		types.LogEntry{Timestamp: "10:00:00", Level: types.LevelInfo, Message: "one"},
		types.LogEntry{Timestamp: "10:00:01", Level: types.LevelError, Message: "two"},
		types.LogEntry{Timestamp: "10:00:02", Level: types.LevelInfo, Message: "three"},
		types.LogEntry{Timestamp: "10:00:03", Level: types.LevelInfo, Message: "four"},
	))

	out, err := execute(t, "logs", "--server", mock.URL())
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)

	out, err = execute(t, "logs", "--level", "error", "--server", mock.URL())
	require.NoError(t, err)
	assert.Equal(t, "[10:00:01] ERROR: two\n", out)

	out, err = execute(t, "logs", "-n", "2", "--level", "info", "--server", mock.URL())
	require.NoError(t, err)
	assert.Equal(t, "[10:00:02] INFO: three\n[10:00:03] INFO: four\n", out)
}

func TestAcquireLock_SecondViewerRefused(t *testing.T) {
	setupCLI(t)

	ok, err := AcquireLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer ReleaseLock()

	other := flock.New(config.GetLockPath())
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.False(t, locked, "lock is held by the first viewer")

	ReleaseLock()
	locked, err = other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	_ = other.Unlock()
}

func TestWatch_ExitWhenDone(t *testing.T) {
	setupCLI(t)
	mock := testutil.NewMockServerT(t)

	out := &lockedBuffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs([]string{"watch", "--exit-when-done", "--server", mock.URL()})

	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(context.Background())
	}()

	mock.WaitForSubscribers(t, 1, 5*time.Second)
	require.Eventually(t, func() bool {
		return mock.DownloadGets.Load() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	running := types.DownloadStatus{Running: true, TotalTracks: 3, ProcessedTracks: 1, CurrentTrack: "Song A"}
	mock.SetStatus(running)
	mock.Push("status_update", running)

	resp, err := http.Post(mock.URL()+"/api/downloads/stop", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not exit after the run stopped")
	}

	assert.Contains(t, out.String(), "Connected to "+mock.URL()+" (sse)")
}

func TestSuperviseSession_QuitsOnFailure(t *testing.T) {
	quit := make(chan struct{})
	errc := superviseSession(context.Background(), func(context.Context) error {
		return errors.New("open push stream: boom")
	}, func() { close(quit) })

	select {
	case <-quit:
	case <-time.After(2 * time.Second):
		t.Fatal("dashboard was not asked to quit")
	}
	assert.EqualError(t, <-errc, "open push stream: boom")
}

func TestSuperviseSession_CleanExitKeepsDashboard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	quitCalls := 0
	errc := superviseSession(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, func() { quitCalls++ })

	cancel()
	assert.NoError(t, <-errc)
	assert.Zero(t, quitCalls)
}
