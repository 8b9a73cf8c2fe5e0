package events

import (
	"errors"
	"fmt"
	"testing"

	"github.com/soundseeker/seekerctl/internal/types"
)

func TestDecode_LogMessage(t *testing.T) {
	msg, err := Decode(NameLogMessage, []byte(`{"timestamp":"12:00:01","level":"INFO","message":"Download started"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	m, ok := msg.(LogMessageMsg)
	if !ok {
		t.Fatalf("Expected LogMessageMsg, got %T", msg)
	}
	if m.Timestamp != "12:00:01" || m.Level != types.LevelInfo || m.Message != "Download started" {
		t.Errorf("Unexpected entry: %+v", m.LogEntry)
	}
}

func TestDecode_StatusUpdate(t *testing.T) {
	body := `{"running":true,"paused":false,"total_tracks":10,"processed_tracks":3,"current_track":"A - B","current_method":"SpotDL"}`
	msg, err := Decode(NameStatusUpdate, []byte(body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	m, ok := msg.(StatusUpdateMsg)
	if !ok {
		t.Fatalf("Expected StatusUpdateMsg, got %T", msg)
	}
	want := types.DownloadStatus{
		Running:         true,
		TotalTracks:     10,
		ProcessedTracks: 3,
		CurrentTrack:    "A - B",
		CurrentMethod:   "SpotDL",
	}
	if m.Status != want {
		t.Errorf("Status = %+v, want %+v", m.Status, want)
	}
}

func TestDecode_StatusUpdatePartialPayload(t *testing.T) {
	msg, err := Decode(NameStatusUpdate, []byte(`{"running":false}`))
	if err != nil {
		t.Fatalf("Partial status should decode, got %v", err)
	}
	if got := msg.(StatusUpdateMsg).Status; got != (types.DownloadStatus{}) {
		t.Errorf("Expected zero status, got %+v", got)
	}
}

func TestDecode_RecentDownloadsIgnoresPayload(t *testing.T) {
	for _, data := range [][]byte{nil, []byte(""), []byte("null"), []byte(`{"x":1}`)} {
		msg, err := Decode(NameRecentDownloads, data)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", data, err)
		}
		if _, ok := msg.(RecentDownloadsMsg); !ok {
			t.Errorf("Expected RecentDownloadsMsg, got %T", msg)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode(NameStatusUpdate, []byte(`[1,2`)); err == nil {
		t.Error("Expected error for malformed status payload")
	}
	if _, err := Decode(NameLogMessage, []byte(`"text"`)); err == nil {
		t.Error("Expected error for non-object log payload")
	}
}

func TestDecode_UnknownEvent(t *testing.T) {
	_, err := Decode("progress", []byte(`{}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Expected ErrUnknownEvent, got %v", err)
	}
}

func TestMessageTypes_AreDistinct(t *testing.T) {
	messages := []interface{}{
		LogMessageMsg{},
		StatusUpdateMsg{},
		RecentDownloadsMsg{},
		StreamConnectedMsg{},
		StreamDisconnectedMsg{},
	}

	typeNames := make(map[string]bool)
	for _, msg := range messages {
		typeName := fmt.Sprintf("%T", msg)
		if typeNames[typeName] {
			t.Errorf("Duplicate type: %s", typeName)
		}
		typeNames[typeName] = true
	}
}
