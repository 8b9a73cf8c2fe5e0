package dashboard

import (
	"context"

	"github.com/soundseeker/seekerctl/internal/core"
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/types"
)

// Dispatcher sends start/pause/stop. It does not check the enablement flags
// of the current View; the server decides whether a transition is legal.
type Dispatcher struct {
	svc    core.DownloadService
	runner Runner
	log    *LogBuffer
	errs   ErrorSink
}

func NewDispatcher(svc core.DownloadService, runner Runner, log *LogBuffer, errs ErrorSink) *Dispatcher {
	return &Dispatcher{svc: svc, runner: runner, log: log, errs: errs.orDefault()}
}

// Start begins a new run or resumes a paused one. It logs nothing on success.
func (d *Dispatcher) Start() {
	d.issue("start", d.svc.Start, "")
}

func (d *Dispatcher) Pause() {
	d.issue("pause", d.svc.Pause, "Download paused")
}

func (d *Dispatcher) Stop() {
	d.issue("stop", d.svc.Stop, "Download stopped")
}

func (d *Dispatcher) issue(name string, call func(context.Context) (types.CommandResult, error), successMsg string) {
	d.runner.Run(func(ctx context.Context) func() {
		res, err := call(ctx)
		return func() {
			switch {
			case err != nil:
				metrics.CommandsTotal.WithLabelValues(name, resultError).Inc()
				d.errs("Error sending %s: %v", name, err)
			case !res.Success:
				metrics.CommandsTotal.WithLabelValues(name, resultRejected).Inc()
				d.errs("Server rejected %s: %s", name, res.Message)
			default:
				metrics.CommandsTotal.WithLabelValues(name, resultOK).Inc()
				if successMsg != "" {
					d.log.Append(types.SystemTimestamp, types.LevelInfo, successMsg)
				}
			}
		}
	})
}
