package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundseeker/seekerctl/internal/dashboard"
	"github.com/soundseeker/seekerctl/internal/utils"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a download run, or resume a paused one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, (*dashboard.Dispatcher).Start)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active download run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, (*dashboard.Dispatcher).Pause)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active download run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, (*dashboard.Dispatcher).Stop)
	},
}

// runControl sends one command and prints the log lines it produced.
func runControl(cmd *cobra.Command, action func(*dashboard.Dispatcher)) error {
	svc := newService()
	defer func() { _ = svc.Shutdown() }()

	var failure error
	sink := func(format string, args ...any) {
		utils.Debug(format, args...)
		failure = fmt.Errorf(format, args...)
	}

	log := dashboard.NewLogBuffer(appSettings.Dashboard.LogCapacity)
	d := dashboard.NewDispatcher(svc, dashboard.InlineRunner{Context: cmd.Context()}, log, sink)
	action(d)

	printEntries(cmd.OutOrStdout(), log.Entries())
	return failure
}

func init() {
	rootCmd.AddCommand(startCmd, pauseCmd, stopCmd)
}
