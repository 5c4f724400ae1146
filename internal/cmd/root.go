package cmd

import (
	"fmt"
	"os"

	"github.com/Digital-Shane/tv-renamer/internal/logging"
	"github.com/spf13/cobra"
)

// renameOptions are the flags of the rename command.
type renameOptions struct {
	dryRun       bool
	verbose      bool
	automatic    bool
	titles       bool
	noName       bool
	logChanges   bool
	videoOnly    bool
	episodeStart int
	seasonNumber int
	padLength    int
	seriesName   string
	template     string
	providerName string
	language     string
}

// newRootCommand builds the command tree. Each call gets its own flag
// storage.
func newRootCommand() *cobra.Command {
	var (
		opts  renameOptions
		debug bool
	)

	root := &cobra.Command{
		Use:   "tv-renamer [flags] [directory]",
		Short: "Rename TV episode files into a consistent naming scheme",
		Long: `tv-renamer renames the episode files of a series directory using a naming
template such as "{series} {season}x{episode} {title}".

Season subdirectories are detected automatically and numbered from their
names; a flat directory is treated as a single season. Episode titles can be
fetched from TVDB, TMDB or OMDb with --titles.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cmd.ErrOrStderr(), debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args, opts)
		},
	}

	flags := root.Flags()
	flags.BoolVarP(&opts.dryRun, "dry-run", "d", false, "Preview renames without touching any file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print every rename and a summary")
	flags.IntVarP(&opts.episodeStart, "episode-start", "e", 1, "Number of the first episode")
	flags.IntVarP(&opts.seasonNumber, "season-number", "s", 1, "Season number of a flat directory")
	flags.StringVarP(&opts.seriesName, "series-name", "n", "", "Series name (default: directory name)")
	flags.StringVarP(&opts.template, "template", "t", "", "Naming template (default from config)")
	flags.IntVarP(&opts.padLength, "pad-length", "p", 2, "Minimum digits for season and episode numbers")
	flags.BoolVarP(&opts.automatic, "automatic", "a", true, "Detect season subdirectories")
	flags.BoolVar(&opts.titles, "titles", false, "Fetch episode titles from the metadata service")
	flags.BoolVar(&opts.noName, "no-name", false, "Leave the series name out of new names")
	flags.BoolVar(&opts.logChanges, "log-changes", false, "Append executed renames to the change log")
	flags.BoolVar(&opts.videoOnly, "video-only", false, "Only rename files with a video extension")
	flags.StringVar(&opts.providerName, "provider", "", "Metadata service: tvdb, tmdb or omdb (default from config)")
	flags.StringVar(&opts.language, "language", "", "Language for title lookups (default from config)")

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Print diagnostic logging to stderr")

	root.AddCommand(newConfigCommand(), newLogCommand(), newUndoCommand())
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tv-renamer: %v\n", err)
		os.Exit(1)
	}
}
