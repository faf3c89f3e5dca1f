package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayAt composites the overlay string on top of the background at
// column x, row y. Both strings may carry ANSI styling.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, line := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLines[row] = spliceLineAt(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns of bgLine starting at x with
// overlay, padding bgLine with spaces when it is shorter than x.
func spliceLineAt(bgLine, overlay string, x int) string {
	left := ansi.Truncate(bgLine, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	right := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return left + overlay + right
}
