package cmd

import (
	"fmt"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	changelog "github.com/Digital-Shane/tv-renamer/internal/log"
	"github.com/spf13/cobra"
)

func newLogCommand() *cobra.Command {
	var lines int

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Print the change log location and its most recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := cfg.ChangeLogPath()
			if err != nil {
				return err
			}

			tail, err := changelog.Tail(path, lines)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Change log: %s\n", path)
			if len(tail) == 0 {
				fmt.Fprintln(out, "No renames recorded yet.")
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	logCmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of trailing lines to print (0 for all)")
	return logCmd
}
