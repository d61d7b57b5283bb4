package patch

import (
	"strings"
)

// ApplyChunks replays chunks, in ascending OrigIndex order, against input.
// Zero chunks return input unchanged.
func ApplyChunks(input string, chunks []Chunk) (string, error) {
	lines := strings.Split(input, "\n")
	destLines := make([]string, 0, len(lines))
	origIndex := 0

	for _, chunk := range chunks {
		if chunk.OrigIndex < 0 || chunk.OrigIndex > len(lines) {
			return "", newDiffError(ChunkOutOfRange,
				"applyDiff: chunk.origIndex %d outside input length %d", chunk.OrigIndex, len(lines))
		}
		if origIndex > chunk.OrigIndex {
			return "", newDiffError(OverlappingChunk,
				"applyDiff: overlapping chunk at %d (cursor %d)", chunk.OrigIndex, origIndex)
		}

		// Add unchanged lines from origIndex up to the chunk
		destLines = append(destLines, lines[origIndex:chunk.OrigIndex]...)

		destLines = append(destLines, chunk.InsLines...)

		// Skip the deleted lines
		origIndex = chunk.OrigIndex + len(chunk.DelLines)
	}

	if origIndex < len(lines) {
		destLines = append(destLines, lines[origIndex:]...)
	}

	return strings.Join(destLines, "\n"), nil
}

// ApplyDiff applies a headerless V4A diff to input.
func ApplyDiff(input, diff string, mode Mode) (string, error) {
	out, _, err := ApplyDiffWithFuzz(input, diff, mode)
	return out, err
}

// ApplyDiffWithFuzz is ApplyDiff that also reports the accumulated fuzz of
// the context matches, so callers can warn about low-confidence edits.
// Create mode always reports zero.
func ApplyDiffWithFuzz(input, diff string, mode Mode) (string, int, error) {
	lines := SplitDiffLines(diff)

	if mode == ModeCreate {
		out, err := ParseCreate(lines)
		return out, 0, err
	}

	parsed, err := ParseUpdate(lines, input)
	if err != nil {
		return "", 0, err
	}

	out, err := ApplyChunks(input, parsed.Chunks)
	if err != nil {
		return "", 0, err
	}
	return out, parsed.Fuzz, nil
}
