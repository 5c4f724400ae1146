package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	"github.com/Digital-Shane/tv-renamer/internal/core"
	changelog "github.com/Digital-Shane/tv-renamer/internal/log"
	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/Digital-Shane/tv-renamer/internal/provider/builtin"
	"github.com/Digital-Shane/tv-renamer/internal/template"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runRename(cmd *cobra.Command, args []string, opts renameOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

	runArgs, err := buildArguments(cfg, dir, opts, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := newPlanPrinter(out, shouldStyle(out))
	deps := core.Deps{
		Confirm: newPromptConfirmer(cmd.InOrStdin(), out),
		Report:  printer,
	}

	if runArgs.TitleLookup {
		name := cfg.Provider
		if opts.providerName != "" {
			name = opts.providerName
		}
		lookup, err := openLookup(cfg, name, runArgs.Language)
		if err != nil {
			return err
		}
		defer lookup.save()
		deps.Lookup = lookup
	}

	if runArgs.LogChanges {
		path, err := cfg.ChangeLogPath()
		if err != nil {
			return err
		}
		session := changelog.NewSession(path, dir)
		log.Debug().Str("run", session.ID()).Str("path", session.Path()).Msg("recording changes")
		defer func() {
			if err := session.Close(); err != nil {
				log.Warn().Err(err).Str("path", session.Path()).Msg("failed to close change log")
			}
		}()
		deps.Changes = session
	}

	if runArgs.DryRun {
		printer.DryRunBanner()
	}

	summary, err := core.Run(cmd.Context(), runArgs, deps)
	if (runArgs.Verbose || runArgs.DryRun) && len(summary.Seasons) > 0 {
		printer.Summary(summary)
	}
	return err
}

// buildArguments layers the command line over the stored defaults. changed
// reports whether a flag was set explicitly.
func buildArguments(cfg *config.Defaults, dir string, opts renameOptions, changed func(string) bool) (*config.Arguments, error) {
	args := cfg.Arguments(dir)

	args.SeriesName = strings.TrimSpace(opts.seriesName)
	args.SeasonIndex = opts.seasonNumber
	args.EpisodeIndex = opts.episodeStart
	if changed("pad-length") {
		args.PadLength = opts.padLength
	}
	if changed("template") {
		args.Template = template.Tokenize(opts.template)
	}
	if changed("language") {
		args.Language = opts.language
	}

	args.DryRun = opts.dryRun
	args.Verbose = opts.verbose
	args.Automatic = opts.automatic
	args.TitleLookup = opts.titles
	args.NoName = opts.noName
	args.LogChanges = opts.logChanges
	args.VideoOnly = opts.videoOnly

	if err := args.Validate(); err != nil {
		return nil, err
	}
	if args.Template.HasTitle() && !args.TitleLookup {
		log.Debug().Msg("template has a title placeholder but --titles is off; titles render empty")
	}
	return args, nil
}

var (
	registryOnce sync.Once
	registryErr  error
)

// providers returns the global registry with the bundled backends loaded.
func providers() (*provider.Registry, error) {
	registryOnce.Do(func() {
		registryErr = builtin.LoadBuiltinProviders()
	})
	return provider.GlobalRegistry, registryErr
}

// persistentLookup is a cached lookup that survives between runs.
type persistentLookup struct {
	*provider.CachedLookup
	path string
}

func openLookup(cfg *config.Defaults, name, language string) (*persistentLookup, error) {
	registry, err := providers()
	if err != nil {
		return nil, err
	}

	backend, err := registry.New(name, provider.Settings{
		APIKey:   cfg.APIKey(name),
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}

	lookup := &persistentLookup{
		CachedLookup: provider.NewCachedLookup(name, backend, time.Duration(cfg.CacheHours)*time.Hour),
	}
	if cfg.CacheHours <= 0 {
		return lookup, nil
	}

	path, err := config.CachePath(name)
	if err != nil {
		log.Warn().Err(err).Msg("lookup cache disabled")
		return lookup, nil
	}
	lookup.path = path
	if err := lookup.LoadFile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable lookup cache")
	}
	return lookup, nil
}

func (l *persistentLookup) save() {
	if l.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		log.Warn().Err(err).Msg("failed to create cache directory")
		return
	}
	if err := l.SaveFile(l.path); err != nil {
		log.Warn().Err(err).Str("path", l.path).Msg("failed to save lookup cache")
		return
	}
	log.Debug().Int("entries", l.Len()).Str("path", l.path).Msg("lookup cache saved")
}
