package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	changelog "github.com/Digital-Shane/tv-renamer/internal/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newUndoCommand() *cobra.Command {
	var (
		runID string
		list  bool
	)

	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the renames of a logged run",
		Long: `Revert the renames recorded in the change log by a run made with
--log-changes. Without --run the most recent run is reverted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := cfg.ChangeLogPath()
			if err != nil {
				return err
			}

			runs, err := changelog.ReadRuns(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No logged runs to undo.")
				return nil
			}
			if list {
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			}

			run, ok := changelog.FindRun(runs, runID)
			if !ok {
				return fmt.Errorf("no logged run with id %q", runID)
			}

			failed := 0
			for _, result := range changelog.UndoRun(run) {
				if result.Error != nil {
					failed++
					fmt.Fprintf(out, "  failed  %s: %v\n", filepath.Base(result.Entry.Target), result.Error)
					continue
				}
				fmt.Fprintf(out, "  undone  %s -> %s\n", filepath.Base(result.Entry.Target), filepath.Base(result.Entry.Source))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d renames could not be undone", failed, len(run.Entries))
			}
			fmt.Fprintf(out, "Reverted %d renames of run %s\n", len(run.Entries), run.ID)
			return nil
		},
	}

	undoCmd.Flags().StringVar(&runID, "run", "", "Run id to revert (default: most recent)")
	undoCmd.Flags().BoolVar(&list, "list", false, "List logged runs instead of reverting one")
	return undoCmd
}

func renderRuns(runs []changelog.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Time", "Directory", "Renames"})
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		tw.AppendRow(table.Row{
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04"),
			run.BaseDir,
			strconv.Itoa(len(run.Entries)),
		})
	}
	return tw.Render()
}
