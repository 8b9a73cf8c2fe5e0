package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	Server    ServerSettings    `json:"server"`
	Dashboard DashboardSettings `json:"dashboard"`
	Metrics   MetricsSettings   `json:"metrics"`
}

// ServerSettings describes how to reach the download server.
type ServerSettings struct {
	URL            string        `json:"url"`
	Transport      string        `json:"transport"` // TransportSSE or TransportWebSocket
	EventsPath     string        `json:"events_path"`
	WebSocketPath  string        `json:"websocket_path"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// DashboardSettings controls the client-side session.
type DashboardSettings struct {
	PollInterval   time.Duration `json:"poll_interval"`
	LogCapacity    int           `json:"log_capacity"`
	ReplayLogs     bool          `json:"replay_logs"`
	StrictOrdering bool          `json:"strict_ordering"`
	ClipboardPaste bool          `json:"clipboard_paste"`
	Theme          int           `json:"theme"`
}

// MetricsSettings controls the optional Prometheus endpoint.
type MetricsSettings struct {
	ListenAddr string `json:"listen_addr"` // Empty disables the endpoint
}

const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

const (
	DefaultServerURL    = "http://127.0.0.1:5000"
	DefaultPollInterval = 30 * time.Second
	DefaultLogCapacity  = 100
)

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text
	Type        string // "string", "int", "bool", "duration"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"Server": {
			{Key: "url", Label: "Server URL", Description: "Base URL of the download server (e.g. http://127.0.0.1:5000).", Type: "string"},
			{Key: "transport", Label: "Push Transport", Description: "Event stream transport: sse or websocket.", Type: "string"},
			{Key: "events_path", Label: "SSE Path", Description: "Path of the server-sent events stream.", Type: "string"},
			{Key: "websocket_path", Label: "WebSocket Path", Description: "Path of the WebSocket event endpoint.", Type: "string"},
			{Key: "request_timeout", Label: "Request Timeout", Description: "Timeout for snapshot and command requests (e.g., 30s).", Type: "duration"},
		},
		"Dashboard": {
			{Key: "poll_interval", Label: "Poll Interval", Description: "How often to refresh downloads while no run is active.", Type: "duration"},
			{Key: "log_capacity", Label: "Log Capacity", Description: "Number of log lines kept on screen (1-100).", Type: "int"},
			{Key: "replay_logs", Label: "Replay Logs", Description: "Load the server log history when the dashboard starts.", Type: "bool"},
			{Key: "strict_ordering", Label: "Strict Ordering", Description: "Ignore status updates older than the one shown (needs server sequence numbers).", Type: "bool"},
			{Key: "clipboard_paste", Label: "Clipboard Paste", Description: "Prefill the add-playlist prompt from the clipboard.", Type: "bool"},
			{Key: "theme", Label: "App Theme", Description: "UI Theme (System, Light, Dark).", Type: "int"},
		},
		"Metrics": {
			{Key: "listen_addr", Label: "Metrics Address", Description: "Serve Prometheus metrics on this address. Leave empty to disable.", Type: "string"},
		},
	}
}

// CategoryOrder returns the order of categories for display.
func CategoryOrder() []string {
	return []string{"Server", "Dashboard", "Metrics"}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			URL:            DefaultServerURL,
			Transport:      TransportSSE,
			EventsPath:     "/api/events",
			WebSocketPath:  "/api/ws",
			RequestTimeout: 30 * time.Second,
		},
		Dashboard: DashboardSettings{
			PollInterval:   DefaultPollInterval,
			LogCapacity:    DefaultLogCapacity,
			ReplayLogs:     false,
			StrictOrdering: false,
			ClipboardPaste: true,
			Theme:          ThemeAdaptive,
		},
	}
}

// Validate reports settings that cannot be used to build a session.
func (s *Settings) Validate() error {
	switch s.Server.Transport {
	case TransportSSE, TransportWebSocket:
	default:
		return fmt.Errorf("unsupported transport %q (use %s or %s)", s.Server.Transport, TransportSSE, TransportWebSocket)
	}
	if s.Server.URL == "" {
		return fmt.Errorf("server url is empty")
	}
	if s.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", s.Dashboard.PollInterval)
	}
	if s.Dashboard.LogCapacity <= 0 || s.Dashboard.LogCapacity > DefaultLogCapacity {
		return fmt.Errorf("log capacity must be between 1 and %d, got %d", DefaultLogCapacity, s.Dashboard.LogCapacity)
	}
	return nil
}

// GetSeekerDir returns the directory holding settings, the lock file and the debug log.
// SEEKERCTL_HOME overrides the default of ~/.seekerctl.
func GetSeekerDir() string {
	if dir := os.Getenv("SEEKERCTL_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".seekerctl"
	}
	return filepath.Join(homeDir, ".seekerctl")
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetSeekerDir(), "settings.json")
}

// GetLockPath returns the path of the single-viewer lock file.
func GetLockPath() string {
	return filepath.Join(GetSeekerDir(), "dashboard.lock")
}

// GetDebugLogPath returns the path of the debug log.
func GetDebugLogPath() string {
	return filepath.Join(GetSeekerDir(), "debug.log")
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
