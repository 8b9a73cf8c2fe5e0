package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/core"
	"github.com/soundseeker/seekerctl/internal/dashboard"
	"github.com/soundseeker/seekerctl/internal/metrics"
	"github.com/soundseeker/seekerctl/internal/tui"
	"github.com/soundseeker/seekerctl/internal/utils"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// appSettings is loaded before every command runs, with flag and env overrides applied.
var appSettings *config.Settings

var registerMetrics sync.Once

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seekerctl",
	Short: "Control surface for a playlist download server",
	Long: `seekerctl starts, pauses and stops download runs on a playlist download server,
manages its playlist sources and shows live progress and log output.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadEffectiveSettings(cmd)
		if err != nil {
			return err
		}
		appSettings = settings

		utils.ConfigureDebug(config.GetDebugLogPath())
		utils.Debug("seekerctl %s: server=%s transport=%s", Version, settings.Server.URL, settings.Server.Transport)

		if addr := settings.Metrics.ListenAddr; addr != "" {
			startMetrics(addr)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		isMaster, err := AcquireLock()
		if err != nil {
			return fmt.Errorf("acquiring lock: %w", err)
		}
		if !isMaster {
			return errors.New("another seekerctl dashboard is already running; use 'seekerctl watch' for a read-only view")
		}
		defer ReleaseLock()

		return startTUI(cmd.Context())
	},
}

// startTUI runs the dashboard until the operator quits.
func startTUI(ctx context.Context) error {
	svc := newService()
	defer func() { _ = svc.Shutdown() }()

	session := dashboard.NewSession(svc, dashboard.OptionsFromSettings(appSettings.Dashboard))
	m := tui.New(session, tui.Options{
		ServerURL:      appSettings.Server.URL,
		Theme:          appSettings.Dashboard.Theme,
		ClipboardPaste: appSettings.Dashboard.ClipboardPaste,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	sessionErr := superviseSession(ctx, session.Run, p.Quit)
	_, runErr := p.Run()

	// Unblock the session before waiting for it
	m.Close()
	cancel()
	if err := <-sessionErr; err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("running dashboard: %w", runErr)
	}
	return nil
}

// superviseSession runs the session in the background and calls quit when it
// fails, so the dashboard does not outlive its session.
func superviseSession(ctx context.Context, run func(context.Context) error, quit func()) <-chan error {
	errc := make(chan error, 1)
	go func() {
		err := run(ctx)
		if err != nil {
			utils.Debug("Session ended: %v", err)
			quit()
		}
		errc <- err
	}()
	return errc
}

// loadEffectiveSettings applies --server, SEEKERCTL_SERVER, --transport and
// --metrics-addr over the settings file.
func loadEffectiveSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	target, _ := cmd.Flags().GetString("server")
	if strings.TrimSpace(target) == "" {
		target = os.Getenv("SEEKERCTL_SERVER")
	}
	if strings.TrimSpace(target) != "" {
		baseURL, err := resolveServerURL(target)
		if err != nil {
			return nil, err
		}
		settings.Server.URL = baseURL
	}

	if transport, _ := cmd.Flags().GetString("transport"); transport != "" {
		settings.Server.Transport = transport
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		settings.Metrics.ListenAddr = addr
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func newService() *core.RemoteDownloadService {
	return core.NewRemoteDownloadService(appSettings.Server)
}

func startMetrics(addr string) {
	registerMetrics.Do(func() {
		metrics.Register(prometheus.DefaultRegisterer)
		go func() {
			if err := metrics.Serve(addr); err != nil {
				utils.Debug("Metrics endpoint on %s stopped: %v", addr, err)
			}
		}()
	})
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server address, host:port or URL (or set SEEKERCTL_SERVER)")
	rootCmd.PersistentFlags().String("transport", "", "Push transport: sse or websocket")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.SetVersionTemplate("seekerctl version {{.Version}}\n")
}
