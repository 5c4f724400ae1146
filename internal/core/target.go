package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Digital-Shane/tv-renamer/internal/config"
	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/Digital-Shane/tv-renamer/internal/template"
)

// TargetErrorKind tags why a target could not be resolved.
type TargetErrorKind int

const (
	EpisodeDoesNotExist TargetErrorKind = iota + 1 // metadata service has no such episode
	Extension                                      // source has no usable extension
	Parent                                         // source has no parent directory
	EmptyName                                      // template rendered to nothing usable
)

func (k TargetErrorKind) String() string {
	switch k {
	case EpisodeDoesNotExist:
		return "episode does not exist"
	case Extension:
		return "extension"
	case Parent:
		return "parent"
	case EmptyName:
		return "empty name"
	default:
		return "unknown"
	}
}

// TargetError reports a source file whose destination could not be computed.
// It matches the Err* kind sentinels with errors.Is.
type TargetError struct {
	Kind    TargetErrorKind
	Source  string
	Episode int
	Err     error
}

var (
	ErrEpisodeDoesNotExist = &TargetError{Kind: EpisodeDoesNotExist}
	ErrExtension           = &TargetError{Kind: Extension}
	ErrParent              = &TargetError{Kind: Parent}
	ErrEmptyName           = &TargetError{Kind: EmptyName}
)

func (e *TargetError) Error() string {
	var msg string
	switch e.Kind {
	case EpisodeDoesNotExist:
		msg = fmt.Sprintf("unable to find episode %d", e.Episode)
	case Extension:
		msg = "unable to get extension"
	case Parent:
		msg = "unable to get parent filepath"
	case EmptyName:
		msg = "template produced an empty name"
	default:
		msg = "unable to resolve target"
	}
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TargetError) Unwrap() error { return e.Err }

// Is matches any TargetError of the same kind.
func (e *TargetError) Is(target error) bool {
	t, ok := target.(*TargetError)
	return ok && t.Kind == e.Kind
}

// ResolveTarget computes the destination path for source as episode of
// season. The result always lives in the same directory as source and keeps
// its extension. seriesID is only consulted when args.TitleLookup is set.
func ResolveTarget(ctx context.Context, source string, season, episode int, args *config.Arguments, lookup provider.TitleLookup, seriesID string) (string, error) {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	if source == "" || ext == "" || ext == "." || ext == base {
		return "", &TargetError{Kind: Extension, Source: source, Episode: episode}
	}

	parent := filepath.Dir(source)
	if parent == "" || parent == source || base == string(filepath.Separator) {
		return "", &TargetError{Kind: Parent, Source: source, Episode: episode}
	}

	var title string
	if args.TitleLookup {
		if lookup == nil {
			return "", fmt.Errorf("title lookup enabled without a metadata provider")
		}
		t, err := lookup.EpisodeTitle(ctx, seriesID, season, episode)
		if errors.Is(err, provider.ErrEpisodeNotFound) {
			return "", &TargetError{Kind: EpisodeDoesNotExist, Source: source, Episode: episode, Err: err}
		}
		if err != nil {
			return "", fmt.Errorf("lookup S%02dE%02d: %w", season, episode, err)
		}
		title = t
	}

	rendered := args.Template.Render(template.Context{
		Series:    args.Series(),
		Season:    season,
		Episode:   episode,
		Title:     title,
		PadLength: args.PadLength,
	})

	name, err := sanitizeFilename(cleanName(rendered))
	if err != nil {
		return "", &TargetError{Kind: EmptyName, Source: source, Episode: episode, Err: err}
	}

	return filepath.Join(parent, name+ext), nil
}
