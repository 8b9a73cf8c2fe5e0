package dashboard

import (
	"context"
	"strings"

	"github.com/soundseeker/seekerctl/internal/core"
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/types"
)

// PlaylistPhase distinguishes an empty playlist set from a failed fetch.
type PlaylistPhase int

const (
	PlaylistsLoading PlaylistPhase = iota
	PlaylistsLoaded
	PlaylistsEmpty
	PlaylistsFailed
)

func (p PlaylistPhase) String() string {
	switch p {
	case PlaylistsLoaded:
		return "loaded"
	case PlaylistsEmpty:
		return "empty"
	case PlaylistsFailed:
		return "failed"
	default:
		return "loading"
	}
}

// PlaylistState is the registry contents as seen by a renderer.
type PlaylistState struct {
	Phase   PlaylistPhase
	Entries []types.PlaylistEntry // Nil unless Phase is PlaylistsLoaded
	Err     error                 // Set when Phase is PlaylistsFailed
}

// Registry mirrors the server's playlist set. It never inserts locally:
// after a successful mutation it re-fetches the whole set.
type Registry struct {
	svc    core.DownloadService
	runner Runner
	log    *LogBuffer
	errs   ErrorSink

	state PlaylistState
	hub   Hub[PlaylistState]
}

func NewRegistry(svc core.DownloadService, runner Runner, log *LogBuffer, errs ErrorSink) *Registry {
	return &Registry{svc: svc, runner: runner, log: log, errs: errs.orDefault()}
}

// Refresh replaces the local list with the server's.
func (r *Registry) Refresh() {
	r.runner.Run(func(ctx context.Context) func() {
		entries, err := r.svc.Playlists(ctx)
		return func() {
			switch {
			case err != nil:
				r.errs("Error loading playlists: %v", err)
				r.set(PlaylistState{Phase: PlaylistsFailed, Err: err})
			case len(entries) == 0:
				r.set(PlaylistState{Phase: PlaylistsEmpty})
			default:
				r.set(PlaylistState{Phase: PlaylistsLoaded, Entries: entries})
			}
		}
	})
}

// Add registers url on the server. Blank input is ignored without a request.
func (r *Registry) Add(url string) {
	r.mutate("add", url, r.svc.AddPlaylist, mutationText{
		ok:        "Playlist successfully added",
		rejected:  "Error adding playlist: ",
		transport: "Error while adding playlist",
	})
}

// Remove unregisters url on the server.
func (r *Registry) Remove(url string) {
	r.mutate("remove", url, r.svc.RemovePlaylist, mutationText{
		ok:        "Playlist successfully removed",
		rejected:  "Error removing playlist: ",
		transport: "Error while removing playlist",
	})
}

type mutationText struct {
	ok        string
	rejected  string // Prefix for the server's message
	transport string
}

func (r *Registry) mutate(op, url string, call func(context.Context, string) (types.CommandResult, error), text mutationText) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}

	r.runner.Run(func(ctx context.Context) func() {
		res, err := call(ctx, url)
		return func() {
			switch {
			case err != nil:
				metrics.PlaylistMutationsTotal.WithLabelValues(op, resultError).Inc()
				r.errs("Error during playlist %s of %s: %v", op, url, err)
				r.log.Append(types.SystemTimestamp, types.LevelError, text.transport)
			case !res.Success:
				metrics.PlaylistMutationsTotal.WithLabelValues(op, resultRejected).Inc()
				msg := res.Message
				if msg == "" {
					msg = "unknown error"
				}
				r.log.Append(types.SystemTimestamp, types.LevelError, text.rejected+msg)
			default:
				metrics.PlaylistMutationsTotal.WithLabelValues(op, resultOK).Inc()
				r.Refresh()
				r.log.Append(types.SystemTimestamp, types.LevelInfo, text.ok)
			}
		}
	})
}

func (r *Registry) set(state PlaylistState) {
	r.state = state
	r.hub.Notify(r.State())
}

// State returns a copy of the current state.
func (r *Registry) State() PlaylistState {
	st := r.state
	if st.Entries != nil {
		st.Entries = append([]types.PlaylistEntry(nil), st.Entries...)
	}
	return st
}

func (r *Registry) Subscribe(fn func(PlaylistState)) func() {
	return r.hub.Subscribe(fn)
}
