package dashboard

import (
	"context"

	"github.com/soundseeker/seekerctl/internal/core"
	"github.com/soundseeker/seekerctl/internal/types"
)

// LibraryState summarizes the server's song archive.
type LibraryState struct {
	Loaded          bool
	DownloadedSongs int
	RecentTracks    []types.Track
}

// Library tracks the downloaded song count and the recent tracks. A
// snapshot that carries a status is also applied to the Synchronizer as a pull.
type Library struct {
	svc    core.DownloadService
	runner Runner
	status *Synchronizer
	errs   ErrorSink

	state LibraryState
	hub   Hub[LibraryState]
}

func NewLibrary(svc core.DownloadService, runner Runner, status *Synchronizer, errs ErrorSink) *Library {
	return &Library{svc: svc, runner: runner, status: status, errs: errs.orDefault()}
}

// Refresh fetches GET /api/downloads. Failures go to the error sink only.
func (l *Library) Refresh() {
	l.runner.Run(func(ctx context.Context) func() {
		snap, err := l.svc.Downloads(ctx)
		return func() {
			if err != nil {
				l.errs("Error loading downloads: %v", err)
				return
			}
			l.apply(snap)
		}
	})
}

func (l *Library) apply(snap *types.DownloadsSnapshot) {
	if snap.Status != nil && l.status != nil {
		l.status.Apply(*snap.Status, SourcePull)
	}

	l.state.Loaded = true
	if snap.DownloadedSongs != nil {
		l.state.DownloadedSongs = len(snap.DownloadedSongs)
	}
	l.state.RecentTracks = append([]types.Track(nil), snap.RecentTracks...)
	l.hub.Notify(l.State())
}

func (l *Library) State() LibraryState {
	st := l.state
	st.RecentTracks = append([]types.Track(nil), st.RecentTracks...)
	return st
}

func (l *Library) Subscribe(fn func(LibraryState)) func() {
	return l.hub.Subscribe(fn)
}
