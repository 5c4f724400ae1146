package core

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	"github.com/Digital-Shane/tv-renamer/internal/media"
	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/Digital-Shane/tv-renamer/internal/scan"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators a run hands to its executor.
type Deps struct {
	Lookup  provider.TitleLookup
	Confirm Confirmer
	Report  Reporter
	Changes ChangeRecorder
}

// Summary collects the per season reports of a run, including the season
// that was interrupted by an error.
type Summary struct {
	SeriesID string
	Layout   scan.ResultKind
	Seasons  []SeasonReport
}

// Totals adds up all season reports. Season is left zero.
func (s Summary) Totals() SeasonReport {
	var total SeasonReport
	for _, r := range s.Seasons {
		total.Episodes += r.Episodes
		total.Planned += r.Planned
		total.Renamed += r.Renamed
		total.Unchanged += r.Unchanged
	}
	return total
}

// Run scans args.Directory and renames every season found. With automatic
// detection season subdirectories are processed in order and each restarts
// numbering at args.EpisodeIndex; otherwise the directory is one season
// numbered args.SeasonIndex. The series is looked up once when titles are
// enabled; a failed lookup aborts before anything is renamed.
func Run(ctx context.Context, args *config.Arguments, deps Deps) (Summary, error) {
	var summary Summary

	if err := args.Validate(); err != nil {
		return summary, fmt.Errorf("invalid arguments: %w", err)
	}

	log.Debug().Str("dir", args.Directory).Str("template", args.Template.String()).Bool("automatic", args.Automatic).Msg("scanning")
	var (
		result *scan.Result
		err    error
	)
	if args.Automatic {
		result, err = scan.Scan(ctx, args.Directory, args.SeasonIndex)
	} else {
		result, err = scan.ScanFlat(ctx, args.Directory, args.SeasonIndex)
	}
	if err != nil {
		return summary, err
	}
	summary.Layout = result.Kind

	if args.TitleLookup {
		if deps.Lookup == nil {
			return summary, fmt.Errorf("title lookup enabled without a metadata provider")
		}
		name := args.SearchName()
		id, err := deps.Lookup.SearchSeries(ctx, name, args.Language)
		if err != nil {
			return summary, fmt.Errorf("unable to find series %q: %w", name, err)
		}
		log.Debug().Str("series", name).Str("id", id).Msg("series resolved")
		summary.SeriesID = id
	}

	exec := &Executor{
		Args:     args,
		Lookup:   deps.Lookup,
		SeriesID: summary.SeriesID,
		Confirm:  deps.Confirm,
		Report:   deps.Report,
		Changes:  deps.Changes,
	}

	seasons := result.Seasons
	if result.Kind == scan.KindEpisodes {
		seasons = []scan.Season{*result.Season}
	}
	if args.VideoOnly {
		seasons = videoEpisodes(seasons)
	}

	for _, season := range seasons {
		log.Debug().Int("season", season.Number).Int("episodes", len(season.Episodes)).Msg("resolving season")
		report, err := exec.RenameSeason(ctx, season, args.EpisodeIndex)
		summary.Seasons = append(summary.Seasons, report)
		if err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// videoEpisodes keeps the video files of each season and warns about
// subtitles left behind.
func videoEpisodes(seasons []scan.Season) []scan.Season {
	filtered := make([]scan.Season, 0, len(seasons))
	for _, season := range seasons {
		subtitles := 0
		for _, path := range season.Episodes {
			if media.IsSubtitle(path) {
				subtitles++
			}
		}
		if subtitles > 0 {
			log.Warn().Int("season", season.Number).Int("subtitles", subtitles).Msg("subtitle files are not renamed with video only filtering")
		}
		filtered = append(filtered, season.Filter(media.IsVideo))
	}
	return filtered
}
