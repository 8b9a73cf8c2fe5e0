package core

import (
	"context"

	"github.com/soundseeker/seekerctl/internal/types"
)

// DownloadService defines the operations the dashboard needs from the
// download server. The dashboard core only depends on this interface so a
// fake can stand in for the remote service in tests.
type DownloadService interface {
	// Downloads returns a point-in-time snapshot of the run status and the song archive.
	Downloads(ctx context.Context) (*types.DownloadsSnapshot, error)

	// Start begins a new run or resumes a paused one. The server decides which.
	Start(ctx context.Context) (types.CommandResult, error)

	// Pause pauses the active run.
	Pause(ctx context.Context) (types.CommandResult, error)

	// Stop stops the active run.
	Stop(ctx context.Context) (types.CommandResult, error)

	// Playlists returns the registered playlist sources in server order.
	Playlists(ctx context.Context) ([]types.PlaylistEntry, error)

	// AddPlaylist registers a playlist source.
	AddPlaylist(ctx context.Context, url string) (types.CommandResult, error)

	// RemovePlaylist unregisters a playlist source by URL.
	RemovePlaylist(ctx context.Context, url string) (types.CommandResult, error)

	// Logs returns the server's recent log history.
	Logs(ctx context.Context) ([]types.LogEntry, error)

	// StreamEvents returns a channel of push events (see package events).
	// The channel is closed when ctx is done or the service shuts down.
	StreamEvents(ctx context.Context) (<-chan any, error)

	// Shutdown stops all streams opened by the service.
	Shutdown() error
}
