package patch

import (
	"strings"
	"unicode"
)

// Fuzz costs reported by the context matcher
const (
	FuzzExact        = 0
	FuzzTrailingWS   = 1
	FuzzTrimmed      = 100
	FuzzEOFMisplaced = 10000
)

// matchTier is one equality rule of the matcher, tried in order.
type matchTier struct {
	fuzz      int
	normalize func(string) string
}

var matchTiers = []matchTier{
	{fuzz: FuzzExact, normalize: func(s string) string { return s }},
	{fuzz: FuzzTrailingWS, normalize: trimEnd},
	{fuzz: FuzzTrimmed, normalize: trimBoth},
}

// isTrimmable treats a byte order mark as whitespace, so a BOM at the start
// of a file does not defeat the trimmed tiers.
func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimEnd(s string) string { return strings.TrimRightFunc(s, isTrimmable) }

func trimBoth(s string) string { return strings.TrimFunc(s, isTrimmable) }

// findContext locates context in lines at or after start. For an EOF
// section the match is first tried flush with the end of the file; a match
// found elsewhere is accepted with the FuzzEOFMisplaced penalty.
// It returns -1 when nothing matches.
func findContext(lines []string, context []string, start int, eof bool) (int, int) {
	if eof {
		endStart := len(lines) - len(context)
		if endStart < 0 {
			endStart = 0
		}
		if index, fuzz := findContextCore(lines, context, endStart); index != -1 {
			return index, fuzz
		}
		index, fuzz := findContextCore(lines, context, start)
		if index == -1 {
			return -1, 0
		}
		return index, fuzz + FuzzEOFMisplaced
	}

	return findContextCore(lines, context, start)
}

// findContextCore implements the core context matching logic with different levels of fuzzy matching
func findContextCore(lines []string, context []string, start int) (int, int) {
	if len(context) == 0 {
		return start, 0
	}

	for _, tier := range matchTiers {
		for i := start; i < len(lines); i++ {
			if equalsAt(lines, context, i, tier.normalize) {
				return i, tier.fuzz
			}
		}
	}

	return -1, 0
}

func equalsAt(source []string, target []string, start int, normalize func(string) string) bool {
	if start < 0 || start+len(target) > len(source) {
		return false
	}
	for j, want := range target {
		if normalize(source[start+j]) != normalize(want) {
			return false
		}
	}
	return true
}
