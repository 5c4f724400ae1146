// Package media recognizes media files by extension.
package media

import (
	"path/filepath"
	"regexp"
)

var (
	// videoRe matches video file extensions.
	videoRe = regexp.MustCompile(`(?i)^\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx)$`)

	// subtitleRe matches subtitle file extensions.
	subtitleRe = regexp.MustCompile(`(?i)^\.(srt|sub|idx|ass|ssa|smi|vtt|sbv|sami|usf|stl|dks|pjs|jss|psb|rt|scc|cap|sup|dfxp|ttml)$`)
)

// IsVideo reports whether filename has a recognized video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filepath.Ext(filename))
}

// IsSubtitle reports whether filename has a recognized subtitle extension.
func IsSubtitle(filename string) bool {
	return subtitleRe.MatchString(filepath.Ext(filename))
}
