package patch

import "strings"

// SplitDiffLines tokenizes raw diff text. Lines may end in "\n" or "\r\n";
// a single trailing empty line produced by a final newline is dropped.
func SplitDiffLines(diff string) []string {
	if diff == "" {
		return []string{}
	}

	lines := strings.Split(diff, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
