package ui

import (
	"fmt"
	"strings"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/epuerta/codex-patch/internal/patch"
)

// FormatPatchForDisplay colors a V4A diff line by line: additions, removals,
// context, '@@' anchors and '*** ' markers each get their own style.
func FormatPatchForDisplay(diff string) string {
	var formatted strings.Builder

	for _, line := range patch.SplitDiffLines(diff) {
		switch {
		case strings.HasPrefix(line, "@@"):
			formatted.WriteString(diffAnchorStyle.Render(line))
		case strings.HasPrefix(line, "***"):
			formatted.WriteString(diffMarkerStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			formatted.WriteString(diffAddedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			formatted.WriteString(diffRemovedStyle.Render(line))
		case line == "":
			// Blank lines are context in V4A
			formatted.WriteString(diffContextStyle.Render(" "))
		default:
			formatted.WriteString(diffContextStyle.Render(line))
		}
		formatted.WriteString("\n")
	}

	return formatted.String()
}

// FormatOperation renders a header for op followed by its colored diff
func FormatOperation(op editor.Operation) string {
	var sb strings.Builder

	switch o := op.(type) {
	case editor.CreateFile:
		stats := patch.Summarize(o.Diff)
		sb.WriteString(diffHeaderStyle.Render(fmt.Sprintf("create %s (+%d)", o.Path, stats.Added)))
		sb.WriteString("\n")
		sb.WriteString(FormatPatchForDisplay(o.Diff))
	case editor.UpdateFile:
		stats := patch.Summarize(o.Diff)
		sb.WriteString(diffHeaderStyle.Render(fmt.Sprintf("update %s (+%d -%d, %d hunks)", o.Path, stats.Added, stats.Removed, stats.Hunks)))
		sb.WriteString("\n")
		sb.WriteString(FormatPatchForDisplay(o.Diff))
	case editor.DeleteFile:
		sb.WriteString(diffHeaderStyle.Render("delete " + o.Path))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatChange renders a planned change for approval. Deletions list the
// lines that will be removed.
func FormatChange(c *editor.Change) string {
	out := FormatOperation(c.Op)
	if _, ok := c.Op.(editor.DeleteFile); ok && c.OldContent != "" {
		for _, line := range strings.Split(c.OldContent, "\n") {
			out += diffRemovedStyle.Render("-"+line) + "\n"
		}
	}
	if c.Fuzz > 0 {
		out += diffMarkerStyle.Render(fmt.Sprintf("context matched with fuzz %d", c.Fuzz)) + "\n"
	}
	return out
}
