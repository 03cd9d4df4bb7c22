// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to fit within maxWidth terminal
// cells, adding an ellipsis if needed. Width is measured in display
// cells so wide runes count double.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadCell truncates or right-pads s to exactly width display cells so
// columns line up regardless of rune width.
func PadCell(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}
