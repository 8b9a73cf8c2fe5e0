package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundseeker/seekerctl/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(appSettings, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, string(data))
			return nil
		}

		values, err := settingValues(appSettings)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "Settings file: %s\n", config.GetSettingsPath())
		metadata := config.GetSettingsMetadata()
		for _, category := range config.CategoryOrder() {
			_, _ = fmt.Fprintf(out, "\n[%s]\n", category)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			section := values[sectionKey(category)]
			for _, meta := range metadata[category] {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", meta.Label, formatSetting(meta, section[meta.Key]))
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective settings to the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveSettings(appSettings); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.GetSettingsPath())
		return nil
	},
}

func sectionKey(category string) string {
	switch category {
	case "Server":
		return "server"
	case "Dashboard":
		return "dashboard"
	default:
		return "metrics"
	}
}

// settingValues flattens the settings into section -> key -> value using their JSON names.
func settingValues(s *config.Settings) (map[string]map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var values map[string]map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func formatSetting(meta config.SettingMeta, v any) string {
	switch meta.Type {
	case "duration":
		if n, ok := v.(float64); ok {
			return time.Duration(int64(n)).String()
		}
	case "int":
		if meta.Key == "theme" {
			if n, ok := v.(float64); ok {
				return themeName(int(n))
			}
		}
	case "string":
		if v == "" {
			return "(unset)"
		}
	}
	return fmt.Sprint(v)
}

func themeName(theme int) string {
	switch theme {
	case config.ThemeLight:
		return "light"
	case config.ThemeDark:
		return "dark"
	default:
		return "system"
	}
}

func init() {
	settingsCmd.Flags().Bool("json", false, "Print as JSON")
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}
