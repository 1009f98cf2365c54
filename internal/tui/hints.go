package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move h:back l:open"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, h/l, etc.)
	Edit   []Hint // Edit hints (a, e, d, etc.)
	Action []Hint // Action hints (Enter, Tab, etc.)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		if a.focus == PaneFolders {
			return a.getFolderPaneHints()
		}
		return a.getBookmarkPaneHints()
	case ModeFilter, ModeSearch:
		return a.getInputModeHints()
	case ModeEditBookmark:
		return a.getBookmarkFormHints()
	case ModeAddFolder:
		return a.getFolderFormHints()
	case ModeConfirmDelete:
		return a.getConfirmDeleteHints()
	case ModeMove:
		return a.getMoveHints()
	case ModeCredential:
		return a.getCredentialHints()
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		return HintSet{}
	}
}

// getFolderPaneHints returns hints while the folder pane is focused.
func (a App) getFolderPaneHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "back"},
			{Key: "u", Desc: "up"},
			{Key: "l", Desc: "open"},
		},
		Action: []Hint{
			{Key: "space", Desc: "filter"},
			{Key: "0", Desc: "no folder"},
			{Key: "/", Desc: "find"},
		},
		Edit: []Hint{
			{Key: "A", Desc: "add"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// getBookmarkPaneHints returns hints while the bookmark pane is focused.
func (a App) getBookmarkPaneHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "n", Desc: "more"},
		},
		Action: []Hint{
			{Key: "l", Desc: "open"},
			{Key: "s", Desc: "search"},
			{Key: "v", Desc: "select"},
		},
		Edit: []Hint{
			{Key: "e", Desc: "edit"},
			{Key: "m", Desc: "move"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if _, selecting := a.nav.Selection(); selecting {
		hints.Action = []Hint{
			{Key: "space", Desc: "toggle"},
			{Key: "Esc", Desc: "done"},
		}
	}
	return hints
}

// getInputModeHints returns hints for ModeFilter and ModeSearch.
func (a App) getInputModeHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "filter"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "apply"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getBookmarkFormHints returns hints for ModeEditBookmark.
func (a App) getBookmarkFormHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
	if len(a.modal.TagSuggestions) > 0 {
		hints.Nav = []Hint{
			{Key: "↑/↓", Desc: "suggest"},
			{Key: "Tab", Desc: "accept"},
		}
	}
	return hints
}

// getFolderFormHints returns hints for ModeAddFolder.
func (a App) getFolderFormHints() HintSet {
	return HintSet{
		Action: []Hint{
			{Key: "Enter", Desc: "create"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getConfirmDeleteHints returns empty hints; they are shown inside the modal.
func (a App) getConfirmDeleteHints() HintSet {
	return HintSet{}
}

// getMoveHints returns hints for ModeMove.
func (a App) getMoveHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "nav"},
			{Key: "h/l", Desc: "back/open"},
			{Key: "space", Desc: "choose"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "move"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getCredentialHints returns hints for the API key prompt.
func (a App) getCredentialHints() HintSet {
	return HintSet{
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "ctrl+c", Desc: "quit"},
		},
	}
}
