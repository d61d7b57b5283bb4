package patch

import "strings"

// cursor walks the tokenized lines of one diff. It is owned by a single
// parse call and never shared.
type cursor struct {
	lines []string
	index int
	fuzz  int
}

// newCursor copies lines and appends the synthetic End Patch marker so every
// loop is guaranteed to hit a terminator.
func newCursor(lines []string) *cursor {
	withEnd := make([]string, 0, len(lines)+1)
	withEnd = append(withEnd, lines...)
	withEnd = append(withEnd, EndPatchMarker)
	return &cursor{lines: withEnd}
}

// peek returns the current line without consuming it
func (c *cursor) peek() (string, bool) {
	if c.index >= len(c.lines) {
		return "", false
	}
	return c.lines[c.index], true
}

// advance consumes the current line
func (c *cursor) advance() {
	if c.index < len(c.lines) {
		c.index++
	}
}

// isAtTerminator checks if parsing is complete
func (c *cursor) isAtTerminator(prefixes []string) bool {
	line, ok := c.peek()
	if !ok {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// readPrefixed consumes the current line if it starts with prefix and
// returns the rest of it.
func (c *cursor) readPrefixed(prefix string) (string, bool) {
	line, ok := c.peek()
	if !ok || !strings.HasPrefix(line, prefix) {
		return "", false
	}
	c.advance()
	return strings.TrimPrefix(line, prefix), true
}
