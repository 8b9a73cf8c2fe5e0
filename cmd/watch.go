package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/soundseeker/seekerctl/internal/dashboard"
	"github.com/soundseeker/seekerctl/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow log output and run progress without the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exitWhenDone, _ := cmd.Flags().GetBool("exit-when-done")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runWatch(ctx, cmd.OutOrStdout(), exitWhenDone)
	},
}

// headlessConsumer prints log lines and renders the current run as a bar.
// Its methods are called from the session actor.
type headlessConsumer struct {
	progress *mpb.Progress
	out      io.Writer

	mu      sync.Mutex
	bar     *mpb.Bar
	running bool
	onDone  func()

	track atomic.Value // string; read by the bar decorator
}

// syncWriter serializes log lines with the bar renderer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func newHeadlessConsumer(out io.Writer, onDone func()) *headlessConsumer {
	sw := &syncWriter{w: out}
	return &headlessConsumer{
		progress: mpb.New(mpb.WithOutput(sw), mpb.WithWidth(64), mpb.WithRefreshRate(150*time.Millisecond)),
		out:      sw,
		onDone:   onDone,
	}
}

func (h *headlessConsumer) onLog(entries []types.LogEntry) {
	if len(entries) == 0 {
		return
	}
	// Each notification follows exactly one append
	h.println(entries[len(entries)-1].String())
}

func (h *headlessConsumer) println(line string) {
	_, _ = fmt.Fprintln(h.out, line)
}

func (h *headlessConsumer) onView(v dashboard.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := v.Status
	h.track.Store(v.TrackLabel)

	if s.Running && s.TotalTracks > 0 {
		if h.bar == nil {
			h.bar = h.newBar()
		}
		h.bar.SetTotal(int64(s.TotalTracks), false)
		h.bar.SetCurrent(int64(s.ProcessedTracks))
	}

	if h.running && !s.Running {
		h.finishBar(s)
		if h.onDone != nil {
			h.onDone()
		}
	}
	h.running = s.Running
}

func (h *headlessConsumer) newBar() *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	return h.progress.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name("Tracks", decor.WC{W: 7, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 10}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "Done"),
			decor.Any(func(decor.Statistics) string {
				track, _ := h.track.Load().(string)
				return " " + track
			}),
		),
	)
}

// finishBar completes the bar of a run that reached its total and drops it otherwise.
func (h *headlessConsumer) finishBar(s types.DownloadStatus) {
	if h.bar == nil {
		return
	}
	if s.TotalTracks > 0 && s.ProcessedTracks >= s.TotalTracks {
		h.bar.SetTotal(-1, true)
	} else {
		h.bar.Abort(false)
	}
	h.bar = nil
}

func (h *headlessConsumer) close() {
	h.mu.Lock()
	if h.bar != nil {
		h.bar.Abort(false)
		h.bar = nil
	}
	h.mu.Unlock()
	h.progress.Shutdown()
}

func runWatch(ctx context.Context, out io.Writer, exitWhenDone bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := newService()
	defer func() { _ = svc.Shutdown() }()

	session := dashboard.NewSession(svc, dashboard.OptionsFromSettings(appSettings.Dashboard))

	var onDone func()
	if exitWhenDone {
		onDone = cancel
	}
	consumer := newHeadlessConsumer(out, onDone)
	defer consumer.close()

	session.Log.Subscribe(consumer.onLog)
	session.Status.Subscribe(consumer.onView)
	session.SubscribeConnection(func(c dashboard.ConnectionState) {
		if c.Connected {
			consumer.println(fmt.Sprintf("Connected to %s (%s)", appSettings.Server.URL, c.Transport))
		}
	})

	return session.Run(ctx)
}

func init() {
	watchCmd.Flags().Bool("exit-when-done", false, "Exit when the current run stops")
	rootCmd.AddCommand(watchCmd)
}
