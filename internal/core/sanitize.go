package core

import (
	"fmt"
	"regexp"
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

var emptyBracketsRe = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)

// cleanName tidies a rendered name: empty brackets left by missing values
// are dropped, whitespace collapses, and separators dangling at either end
// are trimmed.
func cleanName(name string) string {
	if name == "" {
		return ""
	}

	result := emptyBracketsRe.ReplaceAllString(name, "")
	result = strings.Join(strings.Fields(result), " ")
	result = strings.Trim(result, "-_–—|: ")
	return strings.TrimSpace(result)
}

// sanitizeFilename replaces characters that are invalid in file names, or
// that would move the file to another directory, with a single space.
func sanitizeFilename(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is empty after sanitization")
	}

	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	if result == "" || result == "." || result == ".." {
		return "", fmt.Errorf("name is empty after sanitization")
	}
	return result, nil
}
