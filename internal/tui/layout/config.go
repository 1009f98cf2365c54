package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane   PaneConfig
	Modal  ModalConfig
	Input  InputConfig
	Text   TextConfig
	Picker PickerConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + breadcrumb (1) + pane borders (2) + help bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// TwoPaneWidthOffset is subtracted before splitting the width.
	// Accounts for app padding (4) + the borders of both panes (4).
	TwoPaneWidthOffset int

	// FolderWidthPercent is the share of the width given to the folder pane.
	FolderWidthPercent int

	// MinFolderWidth is the minimum folder pane width.
	MinFolderWidth int

	// MinBookmarkWidth is the minimum bookmark pane width.
	MinBookmarkWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int

	// HeaderLines is the number of title lines above each pane's items.
	HeaderLines int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// MoveMaxVisible: max folders shown in the move destination chooser.
	MoveMaxVisible int

	// SuggestionsVisible: max tag suggestions shown under the tags input.
	SuggestionsVisible int

	// HelpLeftColumnWidth: width for help overlay left column.
	HelpLeftColumnWidth int

	// HelpRightColumnWidth: width for help overlay right column.
	HelpRightColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit  int
	URLCharLimit    int
	TagsCharLimit   int
	SearchCharLimit int
	FilterCharLimit int
	KeyCharLimit    int

	// Display widths
	StandardWidth int // Used for title, URL, tags, search, API key
	FilterWidth   int // Used for folder filter input (narrower)
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// PickerConfig holds the quick search picker layout.
type PickerConfig struct {
	// ListWidthPercent: percentage of width for results list.
	ListWidthPercent int

	// PreviewWidthPercent: percentage of width for preview pane.
	PreviewWidthPercent int

	// HeaderReduction: lines for header, input, help, padding.
	HeaderReduction int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:    7, // app padding (1) + breadcrumb (1) + pane borders (2) + help bar (3)
			MinHeight:          5,
			TwoPaneWidthOffset: 8,
			FolderWidthPercent: 35,
			MinFolderWidth:     20,
			MinBookmarkWidth:   30,
			ContentPadding:     4,
			HeaderLines:        2,
		},
		Modal: ModalConfig{
			DefaultWidthPercent:  40,
			MinWidth:             50,
			MaxWidth:             80,
			MoveMaxVisible:       8,
			SuggestionsVisible:   5,
			HelpLeftColumnWidth:  18,
			HelpRightColumnWidth: 20,
		},
		Input: InputConfig{
			TitleCharLimit:  100,
			URLCharLimit:    500,
			TagsCharLimit:   200,
			SearchCharLimit: 100,
			FilterCharLimit: 50,
			KeyCharLimit:    200,
			StandardWidth:   40,
			FilterWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
		Picker: PickerConfig{
			ListWidthPercent:    40,
			PreviewWidthPercent: 55,
			HeaderReduction:     8,
		},
	}
}
