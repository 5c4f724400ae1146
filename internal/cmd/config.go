package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective defaults and where they are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", path)
			fmt.Fprintln(out, renderConfig(cfg))
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing config file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

// renderConfig lists the settings with API keys masked.
func renderConfig(cfg *config.Defaults) string {
	changeLog, err := cfg.ChangeLogPath()
	if err != nil {
		changeLog = "unavailable: " + err.Error()
	}

	available := "none"
	if registry, err := providers(); err == nil {
		available = strings.Join(registry.List(), ", ")
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Setting", "Value"})
	tw.AppendRows([]table.Row{
		{"template", cfg.Template},
		{"pad_length", strconv.Itoa(cfg.PadLength)},
		{"language", cfg.Language},
		{"provider", cfg.Provider + " (available: " + available + ")"},
		{"tvdb_api_key", maskKey(cfg.TVDBAPIKey)},
		{"tmdb_api_key", maskKey(cfg.TMDBAPIKey)},
		{"omdb_api_key", maskKey(cfg.OMDBAPIKey)},
		{"change_log", changeLog},
		{"cache_hours", strconv.Itoa(cfg.CacheHours)},
	})
	return tw.Render()
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) <= 4:
		return "****"
	default:
		return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	}
}
