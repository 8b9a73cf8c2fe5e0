package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StatusAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "status_applied_total",
		Help:      "Download status snapshots applied, by source (push or pull).",
	}, []string{"source"})

	StatusIgnoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "status_ignored_total",
		Help:      "Status updates dropped because their sequence number was older than the held one.",
	})

	RunProgressPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "seekerctl",
		Name:      "run_progress_percent",
		Help:      "Processed tracks of the current run as a percentage of the total.",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "commands_total",
		Help:      "Control commands issued, by command and outcome (ok, rejected, error).",
	}, []string{"command", "result"})

	PlaylistMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "playlist_mutations_total",
		Help:      "Playlist add/remove requests, by operation and outcome (ok, rejected, error).",
	}, []string{"op", "result"})

	PushEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "push_events_total",
		Help:      "Events received on the push channel, by event name.",
	}, []string{"event"})

	StreamConnectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "stream_connects_total",
		Help:      "Push channel connections established, by transport.",
	}, []string{"transport"})

	LogEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "seekerctl",
		Name:      "log_evictions_total",
		Help:      "Log entries evicted from the bounded log buffer.",
	})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seekerctl",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the download server, by method and path.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		StatusAppliedTotal,
		StatusIgnoredTotal,
		RunProgressPercent,
		CommandsTotal,
		PlaylistMutationsTotal,
		PushEventsTotal,
		StreamConnectsTotal,
		LogEvictionsTotal,
		RequestDuration,
	)
}

// Serve exposes the default gatherer on addr until the server fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
