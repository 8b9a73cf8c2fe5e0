package dashboard

import (
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/types"
	"github.com/soundseeker/seekerctl/internal/utils"
)

// Source labels where a status came from. It never affects priority.
type Source string

const (
	SourcePush Source = "push"
	SourcePull Source = "pull"
)

// Display strings for the status panel
const (
	TrackPlaceholder = "Initialize..."
	HeadlineRunning  = "Download running"
	HeadlinePaused   = "Download paused"
	HeadlineIdle     = "No download active. Start a download with the Start button."
)

// View is everything a renderer needs to draw the status panel.
type View struct {
	Status types.DownloadStatus

	StartEnabled    bool
	PauseEnabled    bool
	StopEnabled     bool
	ProgressPercent float64

	Headline    string
	TrackLabel  string
	MethodLabel string // Empty when the server reports no method
}

// DeriveView computes the presentation facts for s.
func DeriveView(s types.DownloadStatus) View {
	v := View{
		Status:       s,
		StartEnabled: !(s.Running && !s.Paused),
		PauseEnabled: s.Running && !s.Paused,
		StopEnabled:  s.Running,
		TrackLabel:   s.CurrentTrack,
	}

	if s.TotalTracks > 0 {
		v.ProgressPercent = float64(s.ProcessedTracks) / float64(s.TotalTracks) * 100
	}
	if v.TrackLabel == "" {
		v.TrackLabel = TrackPlaceholder
	}
	if s.CurrentMethod != "" {
		v.MethodLabel = "Download-Method: " + s.CurrentMethod
	}

	switch {
	case s.Running && s.Paused:
		v.Headline = HeadlinePaused
	case s.Running:
		v.Headline = HeadlineRunning
	default:
		v.Headline = HeadlineIdle
	}
	return v
}

// Synchronizer holds the single current DownloadStatus. Push and pull
// updates are applied the same way: the last one applied wins.
type Synchronizer struct {
	// StrictOrdering drops a status whose Seq is lower than the held one.
	// It only takes effect when both carry a sequence number.
	StrictOrdering bool

	status types.DownloadStatus
	view   View
	hub    Hub[View]
}

// NewSynchronizer creates a synchronizer holding the zero status.
func NewSynchronizer(strictOrdering bool) *Synchronizer {
	return &Synchronizer{
		StrictOrdering: strictOrdering,
		view:           DeriveView(types.DownloadStatus{}),
	}
}

// Apply replaces the held status with status and notifies subscribers.
// It reports whether the status was applied.
func (s *Synchronizer) Apply(status types.DownloadStatus, source Source) bool {
	if s.StrictOrdering && status.Seq != 0 && s.status.Seq != 0 && status.Seq < s.status.Seq {
		metrics.StatusIgnoredTotal.Inc()
		utils.Debug("Ignoring %s status seq=%d (holding seq=%d)", source, status.Seq, s.status.Seq)
		return false
	}

	s.status = status
	s.view = DeriveView(status)
	metrics.StatusAppliedTotal.WithLabelValues(string(source)).Inc()
	metrics.RunProgressPercent.Set(s.view.ProgressPercent)

	s.hub.Notify(s.view)
	return true
}

func (s *Synchronizer) Status() types.DownloadStatus { return s.status }

func (s *Synchronizer) View() View { return s.view }

// Subscribe is notified with the new View after every applied status.
func (s *Synchronizer) Subscribe(fn func(View)) func() {
	return s.hub.Subscribe(fn)
}
