package layout

// PickerLayout holds the quick search picker dimensions.
type PickerLayout struct {
	ListWidth    int
	PreviewWidth int
	ListHeight   int
}

// CalculatePickerLayout splits the terminal between the result list and the
// preview of the highlighted bookmark.
func CalculatePickerLayout(terminalWidth, terminalHeight int, cfg PickerConfig) PickerLayout {
	return PickerLayout{
		ListWidth:    terminalWidth * cfg.ListWidthPercent / 100,
		PreviewWidth: terminalWidth * cfg.PreviewWidthPercent / 100,
		ListHeight:   max(terminalHeight-cfg.HeaderReduction, 1),
	}
}
