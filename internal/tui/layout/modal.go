package layout

// ModalWidth returns the width of a centered dialog: DefaultWidthPercent of
// the terminal clamped to [MinWidth, MaxWidth], leaving two columns free at
// each edge of narrow terminals.
func ModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := terminalWidth * cfg.DefaultWidthPercent / 100
	width = min(max(width, cfg.MinWidth), cfg.MaxWidth)
	return max(min(width, terminalWidth-4), 1)
}

// ListWindow returns the rows [start, end) of a dialog list that fit in
// visible lines. The window stays at the top until the cursor passes its
// last row, then scrolls with the cursor.
func ListWindow(cursor, total, visible int) (start, end int) {
	if total <= visible {
		return 0, total
	}
	if visible <= 0 {
		return 0, 0
	}
	start = max(cursor-visible+1, 0)
	return start, min(start+visible, total)
}
