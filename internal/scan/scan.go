// Package scan discovers the season and episode layout of a series directory.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Digital-Shane/treeview"
	"github.com/maruel/natural"
)

// traversalCap bounds how many entries a single scan will index.
const traversalCap = 200000

// Season is a numbered group of episode files. Episodes are ordered; the
// position of a file decides which sequential episode number it receives.
type Season struct {
	Number   int
	Episodes []string
}

// Filter returns a copy of s holding only the episodes keep accepts, in
// their original order.
func (s Season) Filter(keep func(path string) bool) Season {
	filtered := Season{Number: s.Number}
	for _, path := range s.Episodes {
		if keep(path) {
			filtered.Episodes = append(filtered.Episodes, path)
		}
	}
	return filtered
}

// ResultKind tells which variant a Result holds.
type ResultKind int

const (
	KindEpisodes ResultKind = iota // Flat directory of episode files
	KindSeasons                    // Directory of season subdirectories
)

// Result is either a single Season (KindEpisodes) or a list of Seasons
// (KindSeasons), never both.
type Result struct {
	Kind    ResultKind
	Season  *Season
	Seasons []Season
}

// ScanError reports a directory that could not be read.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("unable to read directory %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Scan inspects dir. When it holds season directories each becomes a Season
// numbered from its name; otherwise the regular files of dir form a single
// season numbered seasonIndex.
func Scan(ctx context.Context, dir string, seasonIndex int) (*Result, error) {
	entries, err := index(ctx, dir, 2)
	if err != nil {
		return nil, err
	}

	type seasonDir struct {
		node   *treeview.Node[treeview.FileInfo]
		number int
	}
	var dirs []seasonDir
	for _, node := range entries {
		if c := classifyNode(node); c.Kind == SeasonDirectory {
			dirs = append(dirs, seasonDir{node: node, number: c.Season})
		}
	}

	if len(dirs) == 0 {
		return flatResult(dir, entries, seasonIndex), nil
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		if dirs[i].number != dirs[j].number {
			return dirs[i].number < dirs[j].number
		}
		return natural.Less(dirs[i].node.Data().Name(), dirs[j].node.Data().Name())
	})

	seasons := make([]Season, 0, len(dirs))
	for _, d := range dirs {
		path := filepath.Join(dir, d.node.Data().Name())
		seasons = append(seasons, Season{Number: d.number, Episodes: episodePaths(path, d.node.Children())})
	}

	return &Result{Kind: KindSeasons, Seasons: seasons}, nil
}

// ScanFlat treats dir as a single season regardless of any subdirectories.
func ScanFlat(ctx context.Context, dir string, seasonIndex int) (*Result, error) {
	entries, err := index(ctx, dir, 1)
	if err != nil {
		return nil, err
	}
	return flatResult(dir, entries, seasonIndex), nil
}

// index builds the file tree below dir down to depth levels and returns the
// entries directly inside dir. Hidden entries, special files and directories
// without a season number are pruned while walking.
func index(ctx context.Context, dir string, depth int) ([]*treeview.Node[treeview.FileInfo], error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &ScanError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Path: dir, Err: errors.New("not a directory")}
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ScanError{Path: dir, Err: err}
	}

	tree, err := treeview.NewTreeFromFileSystem(ctx, root, false,
		treeview.WithMaxDepth[treeview.FileInfo](depth),
		treeview.WithTraversalCap[treeview.FileInfo](traversalCap),
		treeview.WithFilterFunc(func(fi treeview.FileInfo) bool {
			if !strings.HasPrefix(filepath.Clean(fi.Path), root+string(filepath.Separator)) {
				return fi.IsDir()
			}
			return Classify(fi.FileInfo).Kind != Unrecognized
		}),
	)
	if err != nil {
		return nil, &ScanError{Path: dir, Err: err}
	}

	nodes := tree.Nodes()
	if len(nodes) == 1 && isRoot(nodes[0], root) {
		return nodes[0].Children(), nil
	}
	return nodes, nil
}

func isRoot(node *treeview.Node[treeview.FileInfo], root string) bool {
	info := node.Data()
	if !info.IsDir() {
		return false
	}
	return filepath.Clean(info.Path) == root || info.Name() == filepath.Base(root)
}

func classifyNode(node *treeview.Node[treeview.FileInfo]) Classification {
	return Classify(node.Data().FileInfo)
}

func flatResult(dir string, entries []*treeview.Node[treeview.FileInfo], seasonIndex int) *Result {
	return &Result{
		Kind:   KindEpisodes,
		Season: &Season{Number: seasonIndex, Episodes: episodePaths(dir, entries)},
	}
}

func episodePaths(dir string, entries []*treeview.Node[treeview.FileInfo]) []string {
	names := make([]string, 0, len(entries))
	for _, node := range entries {
		if classifyNode(node).Kind == EpisodeFile {
			names = append(names, node.Data().Name())
		}
	}

	sort.Sort(natural.StringSlice(names))

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}
