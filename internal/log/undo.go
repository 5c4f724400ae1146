package log

import (
	"fmt"
	"os"
)

type UndoResult struct {
	Entry   Entry
	Success bool
	Error   error
}

// UndoEntry renames the target of a recorded rename back to its source.
func UndoEntry(entry Entry) UndoResult {
	result := UndoResult{Entry: entry}

	if entry.Target == "" || entry.Source == "" {
		result.Error = fmt.Errorf("cannot undo rename: path missing")
		return result
	}

	// Check if the destination file exists (the renamed file)
	if _, err := os.Stat(entry.Target); os.IsNotExist(err) {
		result.Error = fmt.Errorf("cannot undo rename: file %s not found", entry.Target)
		return result
	}

	// Check if reverting would overwrite an existing file
	if _, err := os.Stat(entry.Source); err == nil {
		result.Error = fmt.Errorf("cannot undo rename: original path %s already exists", entry.Source)
		return result
	}

	if err := os.Rename(entry.Target, entry.Source); err != nil {
		result.Error = fmt.Errorf("failed to rename %s back to %s: %w", entry.Target, entry.Source, err)
		return result
	}

	result.Success = true
	return result
}

// UndoRun reverts every rename of run, newest first, and keeps going past
// individual failures.
func UndoRun(run Run) []UndoResult {
	results := make([]UndoResult, 0, len(run.Entries))
	for i := len(run.Entries) - 1; i >= 0; i-- {
		results = append(results, UndoEntry(run.Entries[i]))
	}
	return results
}

// FindRun returns the run with the given id, or the most recent run when id
// is empty.
func FindRun(runs []Run, id string) (Run, bool) {
	if len(runs) == 0 {
		return Run{}, false
	}
	if id == "" {
		return runs[len(runs)-1], true
	}
	for _, run := range runs {
		if run.ID == id {
			return run, true
		}
	}
	return Run{}, false
}
