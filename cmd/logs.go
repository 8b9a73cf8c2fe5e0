package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundseeker/seekerctl/internal/types"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the server's recent log history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		defer func() { _ = svc.Shutdown() }()

		entries, err := svc.Logs(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading logs: %w", err)
		}

		level, _ := cmd.Flags().GetString("level")
		if level != "" {
			entries = filterLevel(entries, types.LogLevel(strings.ToUpper(level)))
		}
		if tail, _ := cmd.Flags().GetInt("tail"); tail > 0 && len(entries) > tail {
			entries = entries[len(entries)-tail:]
		}

		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

func filterLevel(entries []types.LogEntry, level types.LogLevel) []types.LogEntry {
	var out []types.LogEntry
	for _, e := range entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func init() {
	logsCmd.Flags().String("level", "", "Only show entries of this level (INFO, WARNING, ERROR)")
	logsCmd.Flags().IntP("tail", "n", 0, "Only show the last n entries")
	rootCmd.AddCommand(logsCmd)
}
