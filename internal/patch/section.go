package patch

import "strings"

type lineMode int

const (
	modeKeep lineMode = iota
	modeAdd
	modeDelete
)

// section is one hunk body read from the diff
type section struct {
	nextContext []string // original lines the hunk must be located by
	chunks      []Chunk  // OrigIndex relative to nextContext
	endIndex    int
	eof         bool
}

// isSectionBoundary reports whether a raw line ends the current hunk
func isSectionBoundary(line string) bool {
	if strings.HasPrefix(line, "@@") {
		return true
	}
	for _, marker := range endSectionMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// readSection consumes a single hunk starting at start
func readSection(lines []string, start int) (section, error) {
	var (
		context  []string
		delLines []string
		insLines []string
		chunks   []Chunk
	)
	mode := modeKeep
	index := start

	seal := func() {
		if len(insLines) == 0 && len(delLines) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			OrigIndex: len(context) - len(delLines),
			DelLines:  delLines,
			InsLines:  insLines,
		})
		delLines = nil
		insLines = nil
	}

	for index < len(lines) {
		raw := lines[index]
		if isSectionBoundary(raw) || raw == "***" {
			break
		}
		if strings.HasPrefix(raw, "***") {
			return section{}, newDiffError(InvalidLine, "Invalid Line: %s", raw)
		}

		index++
		lastMode := mode
		line := raw
		if line == "" {
			line = " "
		}

		switch line[0] {
		case '+':
			mode = modeAdd
		case '-':
			mode = modeDelete
		case ' ':
			mode = modeKeep
		default:
			return section{}, newDiffError(InvalidLine, "Invalid Line: %s", line)
		}
		line = line[1:]

		if mode == modeKeep && lastMode != modeKeep {
			seal()
		}

		switch mode {
		case modeDelete:
			delLines = append(delLines, line)
			context = append(context, line)
		case modeAdd:
			insLines = append(insLines, line)
		default:
			context = append(context, line)
		}
	}
	seal()

	if index < len(lines) && lines[index] == EndOfFileMarker {
		return section{
			nextContext: context,
			chunks:      chunks,
			endIndex:    index + 1,
			eof:         true,
		}, nil
	}

	if index == start {
		next := ""
		if index < len(lines) {
			next = lines[index]
		}
		return section{}, newDiffError(EmptyHunk, "Nothing in this section - index=%d %s", index, next)
	}

	return section{
		nextContext: context,
		chunks:      chunks,
		endIndex:    index,
	}, nil
}
