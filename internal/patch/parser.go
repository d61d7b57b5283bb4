package patch

import (
	"strings"
)

// ParseCreate interprets a create-mode diff: every line must be "+<text>".
// The result is the new file content.
func ParseCreate(lines []string) (string, error) {
	c := newCursor(lines)
	output := make([]string, 0, len(lines))

	for !c.isAtTerminator(sectionTerminators) {
		line, _ := c.peek()
		c.advance()
		if !strings.HasPrefix(line, "+") {
			return "", newDiffError(InvalidAddFileLine, "Invalid Add File Line: %s", line)
		}
		output = append(output, line[1:])
	}

	return strings.Join(output, "\n"), nil
}

// ParseUpdate interprets an update-mode diff against input and returns the
// chunks anchored to absolute line positions of input.
func ParseUpdate(lines []string, input string) (*ParsedUpdate, error) {
	c := newCursor(lines)
	fileLines := strings.Split(input, "\n")
	chunks := make([]Chunk, 0)
	index := 0

	for !c.isAtTerminator(endSectionMarkers) {
		anchor, hasAnchor := c.readPrefixed("@@ ")
		hasBare := false
		if !hasAnchor {
			if line, ok := c.peek(); ok && line == "@@" {
				c.advance()
				hasBare = true
			}
		}

		// Every hunk after the first must say where it applies.
		if !hasAnchor && !hasBare && index != 0 {
			line, _ := c.peek()
			return nil, newDiffError(InvalidLine, "Invalid Line:\n%s", line)
		}

		if trimBoth(anchor) != "" {
			index = advanceToAnchor(anchor, fileLines, index, c)
		}

		sec, err := readSection(c.lines, c.index)
		if err != nil {
			return nil, err
		}

		newIndex, fuzz := findContext(fileLines, sec.nextContext, index, sec.eof)
		if newIndex == -1 {
			ctxText := strings.Join(sec.nextContext, "\n")
			if sec.eof {
				return nil, newDiffError(InvalidEofContext, "Invalid EOF Context %d:\n%s", index, ctxText)
			}
			return nil, newDiffError(InvalidContext, "Invalid Context %d:\n%s", index, ctxText)
		}

		c.fuzz += fuzz
		for _, ch := range sec.chunks {
			ch.OrigIndex += newIndex
			chunks = append(chunks, ch)
		}

		index = newIndex + len(sec.nextContext)
		c.index = sec.endIndex
	}

	return &ParsedUpdate{Chunks: chunks, Fuzz: c.fuzz}, nil
}

// advanceToAnchor moves index just past the anchor line. The anchor is
// advisory: when it cannot be found the index is returned unchanged and the
// context search decides. Anchors already passed are not searched again.
func advanceToAnchor(anchor string, fileLines []string, index int, c *cursor) int {
	seen := fileLines[:min(index, len(fileLines))]

	if !containsLine(seen, anchor, identity) {
		for i := index; i < len(fileLines); i++ {
			if fileLines[i] == anchor {
				return i + 1
			}
		}
	}

	if !containsLine(seen, anchor, trimBoth) {
		trimmed := trimBoth(anchor)
		for i := index; i < len(fileLines); i++ {
			if trimBoth(fileLines[i]) == trimmed {
				c.fuzz += FuzzTrailingWS
				return i + 1
			}
		}
	}

	return index
}

func identity(s string) string { return s }

func containsLine(lines []string, want string, normalize func(string) string) bool {
	want = normalize(want)
	for _, line := range lines {
		if normalize(line) == want {
			return true
		}
	}
	return false
}
