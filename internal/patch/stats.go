package patch

import "strings"

// Stats summarises the lines of a diff body without applying it
type Stats struct {
	Added   int
	Removed int
	Context int
	Hunks   int // "@@" lines, plus a leading hunk that has none
}

// Summarize counts the line kinds in diff. Marker lines ("***") are ignored.
func Summarize(diff string) Stats {
	var s Stats
	inHunk := false
	body := func() {
		if !inHunk {
			s.Hunks++
			inHunk = true
		}
	}

	for _, line := range SplitDiffLines(diff) {
		switch {
		case strings.HasPrefix(line, "@@"):
			s.Hunks++
			inHunk = true
		case strings.HasPrefix(line, "***"):
		case strings.HasPrefix(line, "+"):
			body()
			s.Added++
		case strings.HasPrefix(line, "-"):
			body()
			s.Removed++
		case line == "" || strings.HasPrefix(line, " "):
			body()
			s.Context++
		}
	}
	return s
}
