package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vfaronov/httpheader"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/types"
)

// ClientIDHeader identifies one seekerctl process to the server in its access logs.
const ClientIDHeader = "X-Seeker-Client"

const (
	maxErrorBody        = 1024
	maxBackoff          = 30 * time.Second
	eventChannelBuffer  = 100
	defaultReconnectGap = 1 * time.Second
)

// RemoteDownloadService implements DownloadService over the server's HTTP API.
type RemoteDownloadService struct {
	BaseURL       string
	Transport     string
	EventsPath    string
	WebSocketPath string
	ClientID      string
	Client        *http.Client
	SSEClient     *http.Client

	// ReconnectDelay is the first wait after a dropped push channel; it doubles up to 30s.
	ReconnectDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRemoteDownloadService creates a new remote service instance.
func NewRemoteDownloadService(cfg config.ServerSettings) *RemoteDownloadService {
	ctx, cancel := context.WithCancel(context.Background())
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteDownloadService{
		BaseURL:        strings.TrimRight(cfg.URL, "/"),
		Transport:      cfg.Transport,
		EventsPath:     cfg.EventsPath,
		WebSocketPath:  cfg.WebSocketPath,
		ClientID:       uuid.NewString(),
		Client:         &http.Client{Timeout: timeout},
		SSEClient:      &http.Client{},
		ReconnectDelay: defaultReconnectGap,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// bind derives a context that is also cancelled by Shutdown.
func (s *RemoteDownloadService) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *RemoteDownloadService) headers() http.Header {
	h := http.Header{}
	h.Set(ClientIDHeader, s.ClientID)
	return h
}

func (s *RemoteDownloadService) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header = s.headers()
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.Client.Do(req)
	metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func isJSON(h http.Header) bool {
	mtype, _ := httpheader.ContentType(h)
	return mtype == "application/json" || strings.HasSuffix(mtype, "+json")
}

func newAPIError(resp *http.Response) *APIError {
	// Limit error body read to 1KB
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(bodyBytes)),
		RetryAfter: httpheader.RetryAfter(resp.Header),
	}
}

// getJSON fetches path and decodes a successful answer into v.
func (s *RemoteDownloadService) getJSON(ctx context.Context, path string, v interface{}) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	resp, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// command sends a mutation and decodes its {success, message} answer. The
// server reports refused commands with a 4xx status and a JSON body; those
// come back as a result, not an error.
func (s *RemoteDownloadService) command(ctx context.Context, method, path string, body interface{}) (types.CommandResult, error) {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	resp, err := s.doRequest(ctx, method, path, body)
	if err != nil {
		return types.CommandResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && !isJSON(resp.Header) {
		return types.CommandResult{}, newAPIError(resp)
	}

	var result types.CommandResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode >= 400 {
			return types.CommandResult{}, &APIError{StatusCode: resp.StatusCode}
		}
		return types.CommandResult{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return result, nil
}

// Downloads returns the current status snapshot and song archive.
func (s *RemoteDownloadService) Downloads(ctx context.Context) (*types.DownloadsSnapshot, error) {
	var snapshot types.DownloadsSnapshot
	if err := s.getJSON(ctx, "/api/downloads", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Start begins or resumes a run.
func (s *RemoteDownloadService) Start(ctx context.Context) (types.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/api/downloads/start", nil)
}

// Pause pauses the active run.
func (s *RemoteDownloadService) Pause(ctx context.Context) (types.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/api/downloads/pause", nil)
}

// Stop stops the active run.
func (s *RemoteDownloadService) Stop(ctx context.Context) (types.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/api/downloads/stop", nil)
}

// Playlists returns the registered playlist sources.
func (s *RemoteDownloadService) Playlists(ctx context.Context) ([]types.PlaylistEntry, error) {
	var playlists []types.PlaylistEntry
	if err := s.getJSON(ctx, "/api/playlists", &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

type playlistRequest struct {
	PlaylistURL string `json:"playlist_url"`
}

// AddPlaylist registers a playlist source.
func (s *RemoteDownloadService) AddPlaylist(ctx context.Context, url string) (types.CommandResult, error) {
	return s.command(ctx, http.MethodPost, "/api/playlists", playlistRequest{PlaylistURL: url})
}

// RemovePlaylist unregisters a playlist source.
func (s *RemoteDownloadService) RemovePlaylist(ctx context.Context, url string) (types.CommandResult, error) {
	return s.command(ctx, http.MethodDelete, "/api/playlists", playlistRequest{PlaylistURL: url})
}

// Logs returns the server's recent log history.
func (s *RemoteDownloadService) Logs(ctx context.Context) ([]types.LogEntry, error) {
	var entries []types.LogEntry
	if err := s.getJSON(ctx, "/api/logs", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Shutdown stops the service.
func (s *RemoteDownloadService) Shutdown() error {
	s.cancel()
	return nil
}
