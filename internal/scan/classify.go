package scan

import (
	"io/fs"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Explicit markers: "Season 2", "season.02", "S02", "s2"
	seasonRe    = regexp.MustCompile(`(?i)\b(?:s|season)\.? *(\d+)\b`)
	seasonAltRe = regexp.MustCompile(`(?i)(?:^|[\s\.\-_])(?:s|season)[\s\.\-_]+(\d+)`)

	// Any free standing run of digits
	numberRe = regexp.MustCompile(`\d+`)
)

// ClassKind is the tagged outcome of classifying a directory entry.
type ClassKind int

const (
	Unrecognized    ClassKind = iota // Hidden, special, or a directory without a season number
	SeasonDirectory                  // Directory whose name carries a season number
	EpisodeFile                      // Regular file, a candidate episode
)

// Classification describes a single directory entry. Season is only
// meaningful for SeasonDirectory.
type Classification struct {
	Kind   ClassKind
	Season int
}

// Classify decides what role a file plays in a scan.
func Classify(info fs.FileInfo) Classification {
	if info == nil {
		return Classification{Kind: Unrecognized}
	}
	name := info.Name()
	if name == "" || strings.HasPrefix(name, ".") {
		return Classification{Kind: Unrecognized}
	}

	if info.IsDir() {
		if n, ok := SeasonNumber(name); ok && n > 0 {
			return Classification{Kind: SeasonDirectory, Season: n}
		}
		return Classification{Kind: Unrecognized}
	}

	if info.Mode().IsRegular() {
		return Classification{Kind: EpisodeFile}
	}
	return Classification{Kind: Unrecognized}
}

// SeasonNumber extracts a season number from a directory name such as
// "Season 2", "S02" or "Show - 3". Explicit markers win over bare numbers,
// and four digit years are never treated as seasons.
func SeasonNumber(name string) (int, bool) {
	for _, re := range []*regexp.Regexp{seasonRe, seasonAltRe} {
		if m := re.FindStringSubmatch(name); len(m) >= 2 {
			if n, err := strconv.Atoi(m[1]); err == nil && !isYear(m[1], n) {
				return n, true
			}
		}
	}

	for _, digits := range numberRe.FindAllString(name, -1) {
		n, err := strconv.Atoi(digits)
		if err != nil || isYear(digits, n) {
			continue
		}
		return n, true
	}

	return 0, false
}

func isYear(digits string, n int) bool {
	return len(digits) == 4 && n >= 1900 && n <= 2100
}
