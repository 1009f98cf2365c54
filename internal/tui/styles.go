package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App              lipgloss.Style
	Pane             lipgloss.Style
	PaneActive       lipgloss.Style
	Title            lipgloss.Style
	Item             lipgloss.Style
	ItemSelected     lipgloss.Style
	ItemFiltered     lipgloss.Style // Folder currently used as the bookmark filter
	ItemMarked       lipgloss.Style // Bookmark in the bulk selection
	ItemMarkedCursor lipgloss.Style
	Folder           lipgloss.Style
	Bookmark         lipgloss.Style
	URL              lipgloss.Style
	Tag              lipgloss.Style
	Help             lipgloss.Style
	Empty            lipgloss.Style
	Error            lipgloss.Style
	Match            lipgloss.Style // Fuzzy-matched characters
	HintKey          lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc         lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	HintLabel        lipgloss.Style
	Breadcrumb       lipgloss.Style // Working path above the panes
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders
	danger := lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemMarked: lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(accent),

		ItemMarkedCursor: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemFiltered: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(accent),

		Folder: lipgloss.NewStyle().
			Foreground(primary),

		Bookmark: lipgloss.NewStyle().
			Foreground(primary),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Tag: lipgloss.NewStyle().
			Foreground(subtle),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(1, 0),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		Error: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),

		Match: lipgloss.NewStyle().
			Foreground(accent).
			Underline(true),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		HintLabel: lipgloss.NewStyle().
			Foreground(accent),

		Breadcrumb: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),
	}
}
