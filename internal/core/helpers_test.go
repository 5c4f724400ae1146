package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
)

// stubLookup serves titles for a single series without network access.
type stubLookup struct {
	seriesID string
	titles   map[int][]string // season -> titles, episode n at index n-1
	searched []string
	fetched  int
}

func (s *stubLookup) SearchSeries(ctx context.Context, name, language string) (string, error) {
	s.searched = append(s.searched, name)
	if s.seriesID == "" {
		return "", provider.NotFound("stub", provider.ErrSeriesNotFound, "no results found for show: "+name)
	}
	return s.seriesID, nil
}

func (s *stubLookup) EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	s.fetched++
	titles := s.titles[season]
	if seriesID != s.seriesID || episode < 1 || episode > len(titles) {
		return "", provider.NotFound("stub", provider.ErrEpisodeNotFound, fmt.Sprintf("episode S%02dE%02d not found", season, episode))
	}
	return titles[episode-1], nil
}

func (s *stubLookup) EpisodeCount(ctx context.Context, seriesID string, season int) (int, error) {
	return len(s.titles[season]), nil
}

type recordingReporter struct {
	planned []Planned
}

func (r *recordingReporter) Planned(p Planned) {
	r.planned = append(r.planned, p)
}

type fixedConfirmer struct {
	answer bool
	err    error
	asked  []string
}

func (c *fixedConfirmer) ConfirmOverwrite(source, target string) (bool, error) {
	c.asked = append(c.asked, filepath.Base(target))
	return c.answer, c.err
}

type memoryRecorder struct {
	entries [][2]string
}

func (m *memoryRecorder) Record(source, target string) error {
	m.entries = append(m.entries, [2]string{source, target})
	return nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatal(err)
	}
}

// listDir returns the sorted base names of regular files under dir.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
