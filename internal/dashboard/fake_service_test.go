package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundseeker/seekerctl/internal/types"
)

// fakeService is a scripted core.DownloadService.
type fakeService struct {
	mu sync.Mutex

	snapshot    *types.DownloadsSnapshot
	snapshotErr error
	playlists   []types.PlaylistEntry
	playlistErr error
	logs        []types.LogEntry
	results     map[string]types.CommandResult
	errs        map[string]error

	calls  map[string]int
	urls   []string
	stream chan any
}

func newFakeService() *fakeService {
	return &fakeService{
		results: make(map[string]types.CommandResult),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		stream:  make(chan any, 16),
	}
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) command(name string) (types.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if err := f.errs[name]; err != nil {
		return types.CommandResult{}, err
	}
	if res, ok := f.results[name]; ok {
		return res, nil
	}
	return types.CommandResult{Success: true}, nil
}

func (f *fakeService) Downloads(ctx context.Context) (*types.DownloadsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["downloads"]++
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	if f.snapshot == nil {
		return &types.DownloadsSnapshot{}, nil
	}
	snap := *f.snapshot
	return &snap, nil
}

func (f *fakeService) Start(ctx context.Context) (types.CommandResult, error) {
	return f.command("start")
}

func (f *fakeService) Pause(ctx context.Context) (types.CommandResult, error) {
	return f.command("pause")
}

func (f *fakeService) Stop(ctx context.Context) (types.CommandResult, error) {
	return f.command("stop")
}

func (f *fakeService) Playlists(ctx context.Context) ([]types.PlaylistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["playlists"]++
	if f.playlistErr != nil {
		return nil, f.playlistErr
	}
	return append([]types.PlaylistEntry(nil), f.playlists...), nil
}

func (f *fakeService) AddPlaylist(ctx context.Context, url string) (types.CommandResult, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.command("add")
}

func (f *fakeService) RemovePlaylist(ctx context.Context, url string) (types.CommandResult, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.command("remove")
}

func (f *fakeService) Logs(ctx context.Context) ([]types.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["logs"]++
	return f.logs, nil
}

func (f *fakeService) StreamEvents(ctx context.Context) (<-chan any, error) {
	return f.stream, nil
}

func (f *fakeService) Shutdown() error { return nil }

// errorLog captures an ErrorSink.
type errorLog struct {
	mu    sync.Mutex
	lines []string
}

func (e *errorLog) sink(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = append(e.lines, fmt.Sprintf(format, args...))
}

func (e *errorLog) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}
