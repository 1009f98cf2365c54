package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// renderView creates the complete two-pane view.
func (a App) renderView() string {
	switch a.mode {
	case ModeCredential:
		return a.renderCredentialView()
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeEditBookmark, ModeAddFolder, ModeConfirmDelete, ModeMove:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	widths := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderFolderPane(widths.FolderWidth, paneHeight),
		a.renderBookmarkPane(widths.BookmarkWidth, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderBreadcrumb(), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderBreadcrumb renders the working path and the active filter above the panes.
func (a App) renderBreadcrumb() string {
	path := a.nav.WorkingPath()
	if filter := a.nav.SelectedFilter(); filter != path {
		path += "  > " + describeFilter(filter)
	}

	// Terminal width minus app padding: left=2, right=2
	path = layout.TruncatePathFromLeft(path, a.width-4, a.layoutConfig.Text)
	return a.styles.Breadcrumb.Render(path)
}

// describeFilter names a bookmark filter for display.
func describeFilter(filter string) string {
	if model.IsNotInFolderPath(filter) {
		return "not in folder"
	}
	return filter
}

func (a App) renderFolderPane(width, height int) string {
	var content strings.Builder
	cwd := a.nav.WorkingPath()

	content.WriteString(a.styles.Title.Render("Folders") + "\n")
	switch {
	case a.mode == ModeFilter:
		content.WriteString("/" + a.search.FilterInput.View() + "\n")
	case a.nav.Search() != "":
		content.WriteString(a.styles.Tag.Render("/"+a.nav.Search()) + "\n")
	default:
		content.WriteString("\n")
	}

	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.HeaderLines)
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	rows := a.FolderRows()
	_, cached := a.folders[cwd]

	switch {
	case a.folderErrs[cwd] != nil && !cached:
		content.WriteString(a.styles.Error.Render("Failed to load folders"))
	case !cached && a.loadingFolders[cwd]:
		content.WriteString(a.styles.Empty.Render("(loading...)"))
	case len(rows) == 0 && a.nav.Search() != "":
		content.WriteString(a.styles.Empty.Render("(no matches)"))
	case len(rows) == 0:
		content.WriteString(a.styles.Empty.Render("(no folders)"))
	default:
		offset := layout.CalculateViewportOffset(a.folderCursor, len(rows), visibleHeight)
		for i, row := range rows {
			if i < offset {
				continue
			}
			if i >= offset+visibleHeight {
				break
			}
			isCursor := a.focus == PaneFolders && i == a.folderCursor
			isFiltered := row.Path(cwd) == a.nav.SelectedFilter()
			content.WriteString(a.renderFolderRow(row, isCursor, isFiltered, itemWidth) + "\n")
		}
	}

	return a.paneStyle(PaneFolders).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderFolderRow(row FolderRow, isCursor, isFiltered bool, maxWidth int) string {
	suffix := "/"
	if row.Kind == RowNotInFolder {
		suffix = ""
	}

	if isCursor {
		line, _ := layout.TruncateLabel(row.Title(), "", suffix, maxWidth, a.layoutConfig.Text)
		return a.styles.ItemSelected.Render(padRight(line, maxWidth))
	}

	style := a.styles.Item
	if isFiltered {
		style = a.styles.ItemFiltered
	}
	if len(row.MatchedIndexes) == 0 {
		line, _ := layout.TruncateLabel(row.Title(), "", suffix, maxWidth, a.layoutConfig.Text)
		return style.Render(line)
	}

	styled := highlightMatches(row.Title(), row.MatchedIndexes, lipgloss.NewStyle().Inherit(style).UnsetPaddingLeft(), a.styles.Match)
	line, _ := layout.Truncate(styled+suffix, maxWidth, a.layoutConfig.Text)
	return style.Render(line)
}

func (a App) renderBookmarkPane(width, height int) string {
	var content strings.Builder
	snap := a.bookmarks.Snapshot()
	items := snap.Items()
	sel, selecting := a.nav.Selection()

	title := "Bookmarks"
	if a.search.Query != "" {
		title += " ?" + a.search.Query
	}
	content.WriteString(a.styles.Title.Render(title) + "\n")
	if a.mode == ModeSearch {
		content.WriteString("?" + a.search.Input.View() + "\n")
	} else {
		content.WriteString(a.styles.Empty.Render(a.bookmarkStatus(len(items), snap.ReachingEnd, snap.Loading)) + "\n")
	}

	// Room for the preview of the bookmark under the cursor
	const previewLines = 3
	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.HeaderLines+previewLines)
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	switch {
	case len(items) == 0 && snap.Err != nil:
		content.WriteString(a.styles.Error.Render("Failed to load bookmarks"))
	case len(items) == 0 && snap.Loading:
		content.WriteString(a.styles.Empty.Render("(loading...)"))
	case len(items) == 0:
		content.WriteString(a.styles.Empty.Render("(no bookmarks)"))
	default:
		offset := layout.CalculateViewportOffset(a.bookmarkCursor, len(items), visibleHeight)
		for i, b := range items {
			if i < offset {
				continue
			}
			if i >= offset+visibleHeight {
				break
			}
			isCursor := a.focus == PaneBookmarks && i == a.bookmarkCursor
			isMarked := selecting && sel.Has(b.ID)
			content.WriteString(a.renderBookmarkRow(b, isCursor, isMarked, selecting, itemWidth) + "\n")
		}
		if b, ok := a.currentBookmark(); ok {
			content.WriteString("\n" + a.renderPreview(b, itemWidth))
		}
	}

	return a.paneStyle(PaneBookmarks).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// bookmarkStatus summarizes how much of the list is loaded.
func (a App) bookmarkStatus(count int, reachingEnd, loading bool) string {
	switch {
	case loading:
		return fmt.Sprintf("%d loaded, loading...", count)
	case reachingEnd:
		return fmt.Sprintf("%d total", count)
	default:
		return fmt.Sprintf("%d loaded, n for more", count)
	}
}

func (a App) renderBookmarkRow(b model.Bookmark, isCursor, isMarked, selecting bool, maxWidth int) string {
	prefix := ""
	if selecting {
		prefix = "[ ] "
		if isMarked {
			prefix = "[x] "
		}
	}

	line, _ := layout.TruncateLabel(b.Title, prefix, "", maxWidth, a.layoutConfig.Text)
	switch {
	case isCursor && isMarked:
		return a.styles.ItemMarkedCursor.Render(padRight(line, maxWidth))
	case isCursor:
		return a.styles.ItemSelected.Render(padRight(line, maxWidth))
	case isMarked:
		return a.styles.ItemMarked.Render(line)
	}
	return a.styles.Item.Render(line)
}

// renderPreview shows the URL and tags of a bookmark.
func (a App) renderPreview(b model.Bookmark, maxWidth int) string {
	url, _ := layout.Truncate(b.URL, maxWidth, a.layoutConfig.Text)
	preview := a.styles.URL.Render(url)
	if len(b.Tags) > 0 {
		tags := make([]string, len(b.Tags))
		for i, tag := range b.Tags {
			tags[i] = "#" + tag
		}
		line, _ := layout.Truncate(strings.Join(tags, " "), maxWidth, a.layoutConfig.Text)
		preview += "\n" + a.styles.Tag.Render(line)
	}
	return preview
}

func (a App) paneStyle(p Pane) lipgloss.Style {
	if a.focus == p {
		return a.styles.PaneActive
	}
	return a.styles.Pane
}

func padRight(s string, width int) string {
	if n := layout.CellWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// highlightMatches renders text with the runes at matched positions emphasized.
func highlightMatches(text string, matched []int, base, match lipgloss.Style) string {
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(text) {
		if hit[i] {
			b.WriteString(match.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	// Line 2: Filter and selection state
	if a.mode == ModeNormal || a.mode == ModeFilter || a.mode == ModeSearch {
		lines = append(lines, a.renderStatusLine())
	}

	// Line 3: Local (contextual) keyboard hints, cut to the width inside the app padding
	if localHints := a.renderHints(a.getContextualHints()); localHints != "" {
		line, _ := layout.Truncate(a.styles.HintLabel.Render("Local  ")+localHints, a.width-4, a.layoutConfig.Text)
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
	}

	return msgStyle.Render(prefix + a.messageText)
}

// renderStatusLine renders the [cwd:X] [sel:N] indicators.
func (a App) renderStatusLine() string {
	var status strings.Builder

	status.WriteString(a.styles.HintLabel.Render("State  "))
	status.WriteString("[cwd:" + describeFilter(a.nav.SelectedFilter()) + "]")
	if a.search.Query != "" {
		status.WriteString(" [q:" + a.search.Query + "]")
	}
	if sel, selecting := a.nav.Selection(); selecting {
		status.WriteString(" [sel:" + strconv.Itoa(sel.Len()) + "]")
	}
	if a.nav.CanGoBack() {
		status.WriteString(" [hist:" + strconv.Itoa(len(a.nav.History())) + "]")
	}
	return status.String()
}

func (a App) renderModal() string {
	var title, content strings.Builder

	// Industrial style: thick borders, teal accent
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	modalWidth := layout.ModalWidth(a.width, a.layoutConfig.Modal)
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(modalWidth)

	switch a.mode {
	case ModeAddFolder:
		title.WriteString("Add Folder\n\n")
		content.WriteString("In: " + a.nav.WorkingPath() + "\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.modal.TitleInput.View())

	case ModeEditBookmark:
		title.WriteString("Edit Bookmark\n\n")
		content.WriteString("Title:\n")
		content.WriteString(a.modal.TitleInput.View())
		content.WriteString("\n\n")
		content.WriteString("URL:\n")
		content.WriteString(a.modal.URLInput.View())
		content.WriteString("\n\n")
		content.WriteString("Tags (comma-separated):\n")
		content.WriteString(a.modal.TagsInput.View())
		content.WriteString("\n")

		if len(a.modal.TagSuggestions) > 0 {
			content.WriteString("\n")
			start, end := layout.ListWindow(a.modal.TagSuggestionIdx, len(a.modal.TagSuggestions), a.layoutConfig.Modal.SuggestionsVisible)
			for i := start; i < end; i++ {
				tag := a.modal.TagSuggestions[i]
				if i == a.modal.TagSuggestionIdx {
					content.WriteString(a.styles.ItemSelected.Render("▸ " + tag))
				} else {
					content.WriteString(a.styles.Help.UnsetPadding().Render("  " + tag))
				}
				content.WriteString("\n")
			}
		}

	case ModeConfirmDelete:
		count := len(a.modal.DeleteIDs)
		if count == 1 {
			title.WriteString("Delete Bookmark?\n\n")
			if b, ok := a.bookmarkByID(a.modal.DeleteIDs[0]); ok {
				content.WriteString("\"" + b.Title + "\"\n\n")
			}
		} else {
			title.WriteString("Delete " + strconv.Itoa(count) + " bookmarks?\n\n")
		}
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/Enter", Desc: "confirm"},
			{Key: "n/Esc", Desc: "cancel"},
		}))

	case ModeMove:
		title.WriteString("Move " + strconv.Itoa(len(a.move.IDs)) + " bookmark(s)\n\n")
		content.WriteString("In: " + a.move.Nav.WorkingPath() + "\n")
		content.WriteString("To: " + a.styles.ItemFiltered.UnsetPadding().Render(describeDestination(a.move.Destination())) + "\n\n")

		rows := a.MoveRows()
		if len(rows) == 0 {
			content.WriteString(a.styles.Empty.Render("(no subfolders)"))
			content.WriteString("\n")
		} else {
			maxVisible := a.layoutConfig.Modal.MoveMaxVisible
			start, end := layout.ListWindow(a.move.Cursor, len(rows), maxVisible)
			for i := start; i < end; i++ {
				name := rows[i].Title() + "/"
				if i == a.move.Cursor {
					content.WriteString(a.styles.ItemSelected.Render("▸ " + name))
				} else {
					content.WriteString("  " + name)
				}
				content.WriteString("\n")
			}
		}
	}

	if a.modal.FieldError != "" {
		content.WriteString("\n\n" + a.styles.Error.Render(a.modal.FieldError))
	}

	modalContent := a.styles.Title.Render(title.String()) + content.String()

	// Place modal in center, then add help bar at bottom
	modal := lipgloss.Place(
		a.width,
		a.height-3, // Leave room for help bar
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(modalContent),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

func describeDestination(dest string) string {
	if dest == model.RootPath {
		return "(no folder)"
	}
	return dest
}

func (a App) bookmarkByID(id int64) (model.Bookmark, bool) {
	for _, b := range a.Bookmarks() {
		if b.ID == id {
			return b, true
		}
	}
	return model.Bookmark{}, false
}

// renderCredentialView asks for an API key while authentication is required.
func (a App) renderCredentialView() string {
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	modalWidth := layout.ModalWidth(a.width, a.layoutConfig.Modal)
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(modalWidth)

	var content strings.Builder
	content.WriteString(a.styles.Title.Render("API Key") + "\n\n")
	if reason := a.auth.Reason(); reason != "" {
		content.WriteString(a.styles.Error.Render(reason) + "\n\n")
	}
	content.WriteString("Key:\n")
	content.WriteString(a.credential.Input.View())
	if a.messageText != "" {
		content.WriteString("\n\n" + a.renderMessageLine())
	}

	modal := lipgloss.Place(
		a.width,
		a.height-3,
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(content.String()),
	)
	hints := a.styles.HintLabel.Render("Local  ") + a.renderHints(a.getContextualHints())
	return lipgloss.JoinVertical(lipgloss.Left, modal, "", hints)
}

func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	// Left column: Navigation + Folders
	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k  move\n")
	left.WriteString("gg   top\n")
	left.WriteString("G    bottom\n")
	left.WriteString("tab  switch pane\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("folders") + "\n")
	left.WriteString("l    enter\n")
	left.WriteString("h    back\n")
	left.WriteString("u    parent\n")
	left.WriteString("spc  filter by\n")
	left.WriteString("0    no folder\n")
	left.WriteString("/    find\n")
	left.WriteString("A    add folder\n")

	// Right column: Bookmarks + Selection
	var right strings.Builder
	right.WriteString(a.styles.Title.Render("bookmarks") + "\n")
	right.WriteString("l/o  open url\n")
	right.WriteString("Y    yank url\n")
	right.WriteString("s    search\n")
	right.WriteString("n    load more\n")
	right.WriteString("e    edit\n")
	right.WriteString("m    move\n")
	right.WriteString("d    delete\n")
	right.WriteString("r    reload\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("select") + "\n")
	right.WriteString("v    select mode\n")
	right.WriteString("spc  toggle\n")
	right.WriteString("Esc  clear\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc/q] close"))

	leftCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpLeftColumnWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpRightColumnWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	// Top-left aligned, brutalist style
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}
