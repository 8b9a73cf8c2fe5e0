package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soundseeker/seekerctl/internal/dashboard"
	"github.com/soundseeker/seekerctl/internal/utils"
)

var playlistsCmd = &cobra.Command{
	Use:     "playlists",
	Aliases: []string{"pl"},
	Short:   "List the registered playlist sources",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPlaylists(cmd)
	},
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered playlist sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPlaylists(cmd)
	},
}

var playlistsAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Register a playlist source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlaylist(cmd, args[0], (*dashboard.Registry).Add)
	},
}

var playlistsRemoveCmd = &cobra.Command{
	Use:     "remove <url>",
	Aliases: []string{"rm"},
	Short:   "Unregister a playlist source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlaylist(cmd, args[0], (*dashboard.Registry).Remove)
	},
}

func listPlaylists(cmd *cobra.Command) error {
	svc := newService()
	defer func() { _ = svc.Shutdown() }()

	registry := dashboard.NewRegistry(svc, dashboard.InlineRunner{Context: cmd.Context()}, dashboard.NewLogBuffer(1), utils.Debug)
	registry.Refresh()

	state := registry.State()
	out := cmd.OutOrStdout()
	switch state.Phase {
	case dashboard.PlaylistsFailed:
		return fmt.Errorf("loading playlists: %w", state.Err)
	case dashboard.PlaylistsEmpty:
		_, _ = fmt.Fprintln(out, "No playlists available")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tOWNER\tTRACKS\tURL")
	for _, p := range state.Entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Title(), p.Owner, p.TracksLabel(), p.URL)
	}
	return w.Flush()
}

func mutatePlaylist(cmd *cobra.Command, url string, action func(*dashboard.Registry, string)) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("playlist URL is blank")
	}

	svc := newService()
	defer func() { _ = svc.Shutdown() }()

	log := dashboard.NewLogBuffer(appSettings.Dashboard.LogCapacity)
	registry := dashboard.NewRegistry(svc, dashboard.InlineRunner{Context: cmd.Context()}, log, utils.Debug)
	action(registry, url)

	entries := log.Entries()
	if e, failed := firstError(entries); failed {
		return errors.New(e.Message)
	}
	printEntries(cmd.OutOrStdout(), entries)
	return nil
}

func init() {
	playlistsCmd.AddCommand(playlistsListCmd, playlistsAddCmd, playlistsRemoveCmd)
	rootCmd.AddCommand(playlistsCmd)
}
