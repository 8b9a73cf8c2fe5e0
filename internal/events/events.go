package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soundseeker/seekerctl/internal/types"
)

// Push channel event names
const (
	NameLogMessage      = "log_message"
	NameStatusUpdate    = "status_update"
	NameRecentDownloads = "update_recent_downloads"
)

// ErrUnknownEvent is returned by Decode for event names it does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// LogMessageMsg carries a server log line
type LogMessageMsg struct {
	types.LogEntry
}

// StatusUpdateMsg carries a complete DownloadStatus
type StatusUpdateMsg struct {
	Status types.DownloadStatus
}

// RecentDownloadsMsg signals that the recent downloads list changed.
// It has no payload; receivers re-fetch.
type RecentDownloadsMsg struct{}

// StreamConnectedMsg is emitted each time the push channel (re)connects
type StreamConnectedMsg struct {
	Transport string
}

// StreamDisconnectedMsg is emitted when an established push channel drops
type StreamDisconnectedMsg struct {
	Transport string
	Err       error
}

// Decode turns a named push event and its JSON payload into a message value.
func Decode(name string, data []byte) (any, error) {
	switch name {
	case NameLogMessage:
		var m LogMessageMsg
		if err := json.Unmarshal(data, &m.LogEntry); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return m, nil
	case NameStatusUpdate:
		var m StatusUpdateMsg
		if err := json.Unmarshal(data, &m.Status); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return m, nil
	case NameRecentDownloads:
		return RecentDownloadsMsg{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}
