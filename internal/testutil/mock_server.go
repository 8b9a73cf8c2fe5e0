// Package testutil provides testing utilities for seekerctl.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/soundseeker/seekerctl/internal/types"
)

// PlaylistPrefix is the only playlist URL prefix the mock server accepts.
const PlaylistPrefix = "https://open.spotify.com/"

// PushEvent is one event the mock server broadcasts to its stream clients.
// Data is JSON-encoded; nil means the event carries no payload.
type PushEvent struct {
	Name string
	Data interface{}
}

// MockServer is a stateful stand-in for the playlist download server. It
// follows the server's transition rules (start/resume, pause, stop) and
// broadcasts status_update and log_message events the way the server does.
type MockServer struct {
	Server *httptest.Server

	// Configuration
	Latency            time.Duration // Artificial latency per API request
	FailPlaylists      bool          // Answer GET /api/playlists with a plain-text 500
	OmitSnapshotStatus bool          // Leave "status" out of GET /api/downloads

	// Tracking
	RequestCount   atomic.Int64
	StartCalls     atomic.Int64
	PauseCalls     atomic.Int64
	StopCalls      atomic.Int64
	AddCalls       atomic.Int64
	RemoveCalls    atomic.Int64
	PlaylistGets   atomic.Int64
	DownloadGets   atomic.Int64
	StreamConnects atomic.Int64

	mu          sync.Mutex
	status      types.DownloadStatus
	playlists   []interface{} // types.PlaylistEntry or bare URL strings
	logs        []types.LogEntry
	songs       []types.SongRef
	recent      []types.Track
	subscribers map[chan PushEvent]struct{}

	CustomHandler http.HandlerFunc
}

// MockServerOption is a function that configures a MockServer.
type MockServerOption func(*MockServer)

// WithHandler sets a custom request handler that bypasses the API.
func WithHandler(h http.HandlerFunc) MockServerOption {
	return func(m *MockServer) {
		m.CustomHandler = h
	}
}

// WithStatus sets the initial download status.
func WithStatus(s types.DownloadStatus) MockServerOption {
	return func(m *MockServer) {
		m.status = s
	}
}

// WithPlaylists seeds the playlist set. Entries may be types.PlaylistEntry or URL strings.
func WithPlaylists(entries ...interface{}) MockServerOption {
	return func(m *MockServer) {
		m.playlists = append(m.playlists, entries...)
	}
}

// WithLogs seeds the server log history.
func WithLogs(entries ...types.LogEntry) MockServerOption {
	return func(m *MockServer) {
		m.logs = append(m.logs, entries...)
	}
}

// WithSongs seeds the song archive and the recent tracks list.
func WithSongs(songs []types.SongRef, recent []types.Track) MockServerOption {
	return func(m *MockServer) {
		m.songs = songs
		m.recent = recent
	}
}

// WithLatency adds artificial latency per API request.
func WithLatency(d time.Duration) MockServerOption {
	return func(m *MockServer) {
		m.Latency = d
	}
}

// WithFailingPlaylists makes GET /api/playlists fail with a non-JSON 500.
func WithFailingPlaylists() MockServerOption {
	return func(m *MockServer) {
		m.FailPlaylists = true
	}
}

func newMockServer(opts []MockServerOption) *MockServer {
	m := &MockServer{subscribers: make(map[chan PushEvent]struct{})}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewMockServer creates a new mock API server with the given options.
func NewMockServer(opts ...MockServerOption) *MockServer {
	m := newMockServer(opts)
	m.Server = NewHTTPServer(m.handler())
	return m
}

// NewMockServerT creates a new mock API server and skips the test if binding fails.
func NewMockServerT(t *testing.T, opts ...MockServerOption) *MockServer {
	t.Helper()
	m := newMockServer(opts)
	m.Server = NewHTTPServerT(t, m.handler())
	t.Cleanup(m.Close)
	return m
}

// URL returns the server's URL.
func (m *MockServer) URL() string {
	return m.Server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	if m.Server != nil {
		m.Server.CloseClientConnections()
		m.Server.Close()
	}
}

// Status returns the server-side status.
func (m *MockServer) Status() types.DownloadStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetStatus replaces the server-side status without broadcasting it.
func (m *MockServer) SetStatus(s types.DownloadStatus) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// PlaylistURLs returns the URLs currently registered.
func (m *MockServer) PlaylistURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.playlists))
	for _, p := range m.playlists {
		urls = append(urls, playlistURL(p))
	}
	return urls
}

// Push broadcasts an event to every connected stream client.
func (m *MockServer) Push(name string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastLocked(PushEvent{Name: name, Data: data})
}

// Subscribers returns the number of connected stream clients.
func (m *MockServer) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// WaitForSubscribers blocks until n stream clients are connected or fails the test.
func (m *MockServer) WaitForSubscribers(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.Subscribers() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d stream subscribers (have %d)", n, m.Subscribers())
}

func (m *MockServer) broadcastLocked(ev PushEvent) {
	for ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *MockServer) logLocked(level types.LogLevel, message string) {
	entry := types.LogEntry{Timestamp: time.Now().Format("15:04:05"), Level: level, Message: message}
	m.logs = append(m.logs, entry)
	if len(m.logs) > 100 {
		m.logs = m.logs[1:]
	}
	m.broadcastLocked(PushEvent{Name: "log_message", Data: entry})
}

func (m *MockServer) subscribe() chan PushEvent {
	ch := make(chan PushEvent, 64)
	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()
	m.StreamConnects.Add(1)
	return ch
}

func (m *MockServer) unsubscribe(ch chan PushEvent) {
	m.mu.Lock()
	delete(m.subscribers, ch)
	m.mu.Unlock()
}

func playlistURL(p interface{}) string {
	switch v := p.(type) {
	case string:
		return v
	case types.PlaylistEntry:
		return v.URL
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, types.CommandResult{Success: false, Message: message})
}

func (m *MockServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/downloads", m.handleDownloads)
	mux.HandleFunc("/api/downloads/start", m.handleStart)
	mux.HandleFunc("/api/downloads/pause", m.handlePause)
	mux.HandleFunc("/api/downloads/stop", m.handleStop)
	mux.HandleFunc("/api/playlists", m.handlePlaylists)
	mux.HandleFunc("/api/logs", m.handleLogs)
	mux.HandleFunc("/api/events", m.handleSSE)
	mux.HandleFunc("/api/ws", m.handleWebSocket)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.CustomHandler != nil {
			m.CustomHandler(w, r)
			return
		}
		m.RequestCount.Add(1)
		if m.Latency > 0 && !strings.HasPrefix(r.URL.Path, "/api/events") && r.URL.Path != "/api/ws" {
			time.Sleep(m.Latency)
		}
		mux.ServeHTTP(w, r)
	})
}

func (m *MockServer) handleDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.DownloadGets.Add(1)

	m.mu.Lock()
	body := map[string]interface{}{
		"downloaded_songs": m.songs,
		"recent_tracks":    m.recent,
	}
	if !m.OmitSnapshotStatus {
		body["status"] = m.status
	}
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func (m *MockServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.StartCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.Running {
		if m.status.Paused {
			m.status.Paused = false
			m.broadcastLocked(PushEvent{Name: "status_update", Data: m.status})
			m.logLocked(types.LevelInfo, "Download resumed")
			writeJSON(w, http.StatusOK, types.CommandResult{Success: true, Message: "Download resumed"})
			return
		}
		fail(w, http.StatusBadRequest, "Download already running")
		return
	}

	m.status = types.DownloadStatus{Running: true, CurrentTrack: "Initializing..."}
	m.broadcastLocked(PushEvent{Name: "status_update", Data: m.status})
	m.logLocked(types.LevelInfo, "Download started")
	writeJSON(w, http.StatusOK, types.CommandResult{Success: true, Message: "Download started"})
}

func (m *MockServer) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.PauseCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.status.Running {
		fail(w, http.StatusBadRequest, "No download running")
		return
	}
	if m.status.Paused {
		fail(w, http.StatusBadRequest, "Download already paused")
		return
	}
	m.status.Paused = true
	m.broadcastLocked(PushEvent{Name: "status_update", Data: m.status})
	m.logLocked(types.LevelInfo, "Download paused")
	writeJSON(w, http.StatusOK, types.CommandResult{Success: true, Message: "Download paused"})
}

func (m *MockServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.StopCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.status.Running {
		fail(w, http.StatusBadRequest, "No download running")
		return
	}
	m.status.Running = false
	m.status.Paused = false
	m.broadcastLocked(PushEvent{Name: "status_update", Data: m.status})
	m.logLocked(types.LevelInfo, "Download stopped")
	writeJSON(w, http.StatusOK, types.CommandResult{Success: true, Message: "Download stopped"})
}

func (m *MockServer) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		m.PlaylistGets.Add(1)
		if m.FailPlaylists {
			http.Error(w, "playlist store unavailable", http.StatusInternalServerError)
			return
		}
		m.mu.Lock()
		list := append([]interface{}{}, m.playlists...)
		m.mu.Unlock()
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		m.AddCalls.Add(1)
		var req struct {
			PlaylistURL string `json:"playlist_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "Invalid playlist URL")
			return
		}
		url := strings.TrimSpace(req.PlaylistURL)

		m.mu.Lock()
		defer m.mu.Unlock()
		if !strings.HasPrefix(url, PlaylistPrefix) {
			fail(w, http.StatusBadRequest, "Invalid playlist URL")
			return
		}
		for _, p := range m.playlists {
			if playlistURL(p) == url {
				fail(w, http.StatusBadRequest, "duplicate")
				return
			}
		}
		m.playlists = append(m.playlists, url)
		writeJSON(w, http.StatusOK, types.CommandResult{Success: true})

	case http.MethodDelete:
		m.RemoveCalls.Add(1)
		var req struct {
			PlaylistURL string `json:"playlist_url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		m.mu.Lock()
		defer m.mu.Unlock()
		kept := m.playlists[:0]
		found := false
		for _, p := range m.playlists {
			if playlistURL(p) == req.PlaylistURL {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		m.playlists = kept
		if !found {
			fail(w, http.StatusNotFound, "Playlist not found")
			return
		}
		writeJSON(w, http.StatusOK, types.CommandResult{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (m *MockServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	logs := append([]types.LogEntry{}, m.logs...)
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, logs)
}

func (m *MockServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := m.subscribe()
	defer m.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if ev.Data == nil {
				_, _ = fmt.Fprintf(w, "event: %s\n\n", ev.Name)
			} else {
				data, _ := json.Marshal(ev.Data)
				_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			}
			flusher.Flush()
		}
	}
}

func (m *MockServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ch := m.subscribe()
	defer m.unsubscribe(ch)

	// Reading is required to observe the client closing.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			frame, _ := json.Marshal(map[string]interface{}{"type": ev.Name, "data": ev.Data})
			writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
