package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/Digital-Shane/tv-renamer/internal/scan"
	"github.com/rs/zerolog/log"
)

// ErrOverwriteDeclined aborts a run when the user refuses to replace an
// existing file.
var ErrOverwriteDeclined = errors.New("overwrite declined")

// Confirmer decides whether an existing target may be replaced.
type Confirmer interface {
	ConfirmOverwrite(source, target string) (bool, error)
}

// Reporter receives each planned rename before anything on disk changes.
type Reporter interface {
	Planned(p Planned)
}

// ChangeRecorder persists executed renames.
type ChangeRecorder interface {
	Record(source, target string) error
}

// Planned is one rename about to happen, or previewed under dry run.
type Planned struct {
	Season    int
	Episode   int
	Source    string
	Target    string
	Overwrite bool // target exists and will be replaced
	DryRun    bool
}

// RenameError reports a failed filesystem rename. Earlier renames of the run
// stay in place.
type RenameError struct {
	Source string
	Target string
	Err    error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// SeasonReport counts what happened to the episodes of one season.
type SeasonReport struct {
	Season    int
	Episodes  int
	Planned   int // reported under dry run or verbose
	Renamed   int
	Unchanged int // already carried their target name
}

// Executor renames the episodes of a season. Collaborators left nil are
// skipped, except Confirm: without one every overwrite is declined.
type Executor struct {
	Args     *config.Arguments
	Lookup   provider.TitleLookup
	SeriesID string

	Confirm Confirmer
	Report  Reporter
	Changes ChangeRecorder
}

// RenameSeason resolves and renames every episode of season in order,
// numbering them from startEpisode. The first error stops the season and is
// returned together with the counts reached so far.
func (e *Executor) RenameSeason(ctx context.Context, season scan.Season, startEpisode int) (SeasonReport, error) {
	report := SeasonReport{Season: season.Number, Episodes: len(season.Episodes)}

	limit := -1
	if e.Args.TitleLookup && len(season.Episodes) > 0 {
		n, err := e.episodeLimit(ctx, season.Number)
		if err != nil {
			return report, err
		}
		limit = n
	}

	episode := startEpisode
	for _, source := range season.Episodes {
		current := episode
		episode++

		if err := ctx.Err(); err != nil {
			return report, err
		}

		if limit >= 0 && current > limit {
			return report, &TargetError{Kind: EpisodeDoesNotExist, Source: source, Episode: current}
		}

		target, err := ResolveTarget(ctx, source, season.Number, current, e.Args, e.Lookup, e.SeriesID)
		if err != nil {
			return report, err
		}

		logger := log.With().Int("season", season.Number).Int("episode", current).Str("source", source).Logger()

		if target == source {
			logger.Debug().Msg("already named, skipping")
			report.Unchanged++
			continue
		}

		overwrite, err := e.targetOccupied(source, target)
		if err != nil {
			return report, err
		}
		if overwrite && !e.Args.DryRun {
			ok, err := e.confirm(source, target)
			if err != nil {
				return report, fmt.Errorf("confirm overwrite of %s: %w", target, err)
			}
			if !ok {
				logger.Debug().Str("target", target).Msg("overwrite declined")
				return report, fmt.Errorf("%w: %s", ErrOverwriteDeclined, target)
			}
		}

		if e.Args.DryRun || e.Args.Verbose {
			report.Planned++
			if e.Report != nil {
				e.Report.Planned(Planned{
					Season:    season.Number,
					Episode:   current,
					Source:    source,
					Target:    target,
					Overwrite: overwrite,
					DryRun:    e.Args.DryRun,
				})
			}
		}
		if e.Args.DryRun {
			continue
		}

		if err := os.Rename(source, target); err != nil {
			return report, &RenameError{Source: source, Target: target, Err: err}
		}
		report.Renamed++
		logger.Debug().Str("target", target).Msg("renamed")

		if e.Args.LogChanges && e.Changes != nil {
			if err := e.Changes.Record(source, target); err != nil {
				return report, fmt.Errorf("record rename of %s: %w", source, err)
			}
		}
	}

	return report, nil
}

// episodeLimit returns how many episodes the metadata service lists for the
// season. An unknown season has none.
func (e *Executor) episodeLimit(ctx context.Context, season int) (int, error) {
	if e.Lookup == nil {
		return 0, fmt.Errorf("title lookup enabled without a metadata provider")
	}
	n, err := e.Lookup.EpisodeCount(ctx, e.SeriesID, season)
	if errors.Is(err, provider.ErrEpisodeNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("episode count for season %d: %w", season, err)
	}
	log.Debug().Int("season", season).Int("count", n).Msg("episode count")
	return n, nil
}

// targetOccupied reports whether target names a different, existing file.
// A target that is the source itself under another spelling, as on case
// insensitive filesystems, does not count.
func (e *Executor) targetOccupied(source, target string) (bool, error) {
	targetInfo, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", target, err)
	}
	if sourceInfo, err := os.Stat(source); err == nil && os.SameFile(sourceInfo, targetInfo) {
		return false, nil
	}
	return true, nil
}

func (e *Executor) confirm(source, target string) (bool, error) {
	if e.Confirm == nil {
		return false, nil
	}
	return e.Confirm.ConfirmOverwrite(source, target)
}
