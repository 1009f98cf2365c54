package layout

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes escape sequences, leaving the printable text.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// CellWidth returns how many terminal cells s occupies. Escape sequences
// take none and wide runes take two.
func CellWidth(s string) int {
	return ansi.StringWidth(s)
}

// Truncate shortens s to at most maxWidth cells, ending it with the
// ellipsis. Styled text keeps its escape sequences, so styles opened before
// the cut are still closed. It reports whether anything was cut.
func Truncate(s string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s, false
	}
	// Too narrow for any text: show as much of the ellipsis as fits.
	if maxWidth <= ansi.StringWidth(cfg.Ellipsis) {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(s, maxWidth, cfg.Ellipsis), true
}

// TruncateLabel shortens the text between prefix and suffix so the whole
// label fits maxWidth cells. The affixes stay intact unless there is no room
// for any text, in which case the label is cut as a whole.
// Example: TruncateLabel("Development", "* ", "/", 12, cfg) -> "* Develo.../"
func TruncateLabel(text, prefix, suffix string, maxWidth int, cfg TextConfig) (string, bool) {
	label := prefix + text + suffix
	if maxWidth <= 0 {
		return "", true
	}
	if ansi.StringWidth(label) <= maxWidth {
		return label, false
	}

	room := maxWidth - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	if room <= ansi.StringWidth(cfg.Ellipsis) {
		return Truncate(label, maxWidth, cfg)
	}
	return prefix + ansi.Truncate(text, room, cfg.Ellipsis) + suffix, true
}

// TruncatePathFromLeft shortens a folder path from the left so the deepest
// segments stay visible. Example: "/dev/go/tools" at width 10 -> ".../tools"
func TruncatePathFromLeft(path string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	runes := []rune(path)
	if len(runes) <= maxWidth {
		return path
	}

	ellipsisLen := utf8.RuneCountInString(cfg.Ellipsis)
	if maxWidth <= ellipsisLen {
		return string([]rune(cfg.Ellipsis)[:maxWidth])
	}

	tail := runes[len(runes)-(maxWidth-ellipsisLen):]
	// Prefer cutting at a separator so no partial segment is shown.
	for i, r := range tail {
		if r == '/' {
			tail = tail[i:]
			break
		}
	}
	return cfg.Ellipsis + string(tail)
}
