package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/tv-renamer/internal/template"
)

// Arguments configures one run. Both the command line and any other front
// end fill the same structure; the booleans switch optional capabilities on.
type Arguments struct {
	Directory    string
	SeriesName   string
	SeasonIndex  int
	EpisodeIndex int
	PadLength    int
	Template     template.Template
	Language     string

	DryRun      bool
	Verbose     bool
	Automatic   bool // detect season subdirectories
	TitleLookup bool // fetch episode titles from the metadata service
	NoName      bool // leave the series name out of rendered names
	LogChanges  bool // append executed renames to the change log
	VideoOnly   bool // skip files without a video extension
}

// NewArguments returns arguments for dir with the stock settings.
func NewArguments(dir string) *Arguments {
	return &Arguments{
		Directory:    dir,
		SeasonIndex:  1,
		EpisodeIndex: 1,
		PadLength:    2,
		Template:     template.Default(),
		Automatic:    true,
	}
}

// Validate rejects arguments a run cannot start from.
func (a *Arguments) Validate() error {
	var errs []error
	if strings.TrimSpace(a.Directory) == "" {
		errs = append(errs, errors.New("directory is required"))
	}
	if a.SeasonIndex < 1 {
		errs = append(errs, fmt.Errorf("season number must be positive, got %d", a.SeasonIndex))
	}
	if a.EpisodeIndex < 1 {
		errs = append(errs, fmt.Errorf("starting episode must be positive, got %d", a.EpisodeIndex))
	}
	if a.PadLength < 0 {
		errs = append(errs, fmt.Errorf("pad length cannot be negative, got %d", a.PadLength))
	}
	if len(a.Template) == 0 {
		errs = append(errs, errors.New("template is empty"))
	}
	return errors.Join(errs...)
}

// Series returns the name rendered for the series placeholder: empty under
// NoName, otherwise SeriesName or the base directory name.
func (a *Arguments) Series() string {
	if a.NoName {
		return ""
	}
	return a.SearchName()
}

// SearchName is the name used to look the series up. Unlike Series it
// ignores NoName.
func (a *Arguments) SearchName() string {
	if name := strings.TrimSpace(a.SeriesName); name != "" {
		return name
	}
	return filepath.Base(filepath.Clean(a.Directory))
}
