// Package log records executed renames in an append-only text change log.
//
// A run starts with a header line, followed by one line per rename:
//
//	# 2024-05-01T20:14:03Z run 6f1c...e2 /tv/Foo
//	/tv/Foo/Season 1/a.mkv -> /tv/Foo/Season 1/Foo 01x01.mkv
//
// Paths that contain the arrow, a line break or a leading quote or header
// marker are written as Go quoted strings.
package log

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	headerPrefix = "# "
	arrow        = " -> "
)

// Session appends the renames of one run to a change log. The file is not
// touched until the first Record; the header is written once, right before
// the first entry. The file lock is held from the first Record until Close
// so concurrent runs cannot interleave their entries.
type Session struct {
	mu      sync.Mutex
	path    string
	baseDir string
	id      string
	now     func() time.Time

	lock *flock.Flock
	file *os.File
}

// NewSession prepares a session for the run over baseDir.
func NewSession(path, baseDir string) *Session {
	return &Session{
		path:    path,
		baseDir: baseDir,
		id:      uuid.NewString(),
		now:     time.Now,
	}
}

// ID returns the run identifier written in the header.
func (s *Session) ID() string {
	return s.id
}

// Path returns the change log location.
func (s *Session) Path() string {
	return s.path
}

// Record appends one executed rename.
func (s *Session) Record(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(s.file, "%s%s%s\n", encodePath(source), arrow, encodePath(target)); err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}
	return nil
}

func (s *Session) open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock change log: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("failed to open change log: %w", err)
	}

	header := fmt.Sprintf("%s%s run %s %s\n", headerPrefix, s.now().Format(time.RFC3339), s.id, s.baseDir)
	if _, err := f.WriteString(header); err != nil {
		f.Close()
		lock.Unlock()
		return fmt.Errorf("failed to write change log: %w", err)
	}

	s.lock = lock
	s.file = f
	return nil
}

// Close flushes the log and releases the lock. Closing a session that never
// recorded anything is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	s.file = nil
	s.lock = nil
	return err
}

// Entry is one recorded rename.
type Entry struct {
	Source string
	Target string
}

// Run is one header and the renames recorded under it.
type Run struct {
	ID        string
	Timestamp time.Time
	BaseDir   string
	Entries   []Entry
}

// ReadRuns parses the change log at path in file order. A missing log
// yields no runs. Lines that do not parse are skipped.
func ReadRuns(path string) ([]Run, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	defer f.Close()

	var runs []Run
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if run, ok := parseHeader(line); ok {
			runs = append(runs, run)
			continue
		}
		entry, ok := parseEntry(line)
		if !ok || len(runs) == 0 {
			continue
		}
		last := &runs[len(runs)-1]
		last.Entries = append(last.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	return runs, nil
}

func encodePath(path string) string {
	if strings.Contains(path, arrow) || strings.ContainsAny(path, "\r\n") ||
		strings.HasPrefix(path, `"`) || strings.HasPrefix(path, headerPrefix) {
		return strconv.Quote(path)
	}
	return path
}

func parseEntry(line string) (Entry, bool) {
	var source, rest string
	if strings.HasPrefix(line, `"`) {
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			return Entry{}, false
		}
		if source, err = strconv.Unquote(quoted); err != nil {
			return Entry{}, false
		}
		var ok bool
		if rest, ok = strings.CutPrefix(line[len(quoted):], arrow); !ok {
			return Entry{}, false
		}
	} else {
		var ok bool
		if source, rest, ok = strings.Cut(line, arrow); !ok {
			return Entry{}, false
		}
	}

	target := rest
	if strings.HasPrefix(rest, `"`) {
		unquoted, err := strconv.Unquote(rest)
		if err != nil {
			return Entry{}, false
		}
		target = unquoted
	}
	if source == "" || target == "" {
		return Entry{}, false
	}
	return Entry{Source: source, Target: target}, true
}

func parseHeader(line string) (Run, bool) {
	rest, ok := strings.CutPrefix(line, headerPrefix)
	if !ok {
		return Run{}, false
	}
	fields := strings.SplitN(rest, " ", 4)
	if len(fields) < 3 || fields[1] != "run" {
		return Run{}, false
	}
	ts, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return Run{}, false
	}
	run := Run{ID: fields[2], Timestamp: ts}
	if len(fields) == 4 {
		run.BaseDir = fields[3]
	}
	return run, true
}

// Tail returns up to n trailing lines of the change log.
func Tail(path string, n int) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
