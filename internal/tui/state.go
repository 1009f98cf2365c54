package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/nav"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// Pane identifies the focused list.
type Pane int

const (
	PaneFolders Pane = iota
	PaneBookmarks
)

// newInput creates a text input with a non-blinking cursor.
func newInput(placeholder string, charLimit, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = charLimit
	input.Width = width
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}

// SearchState holds the bookmark query and the folder name filter inputs.
type SearchState struct {
	Input       textinput.Model // Server-side bookmark query
	Query       string          // Active query (persists after closing the input)
	FilterInput textinput.Model // Folder leaf name filter
}

// NewSearchState creates a new SearchState with initialized inputs.
// Both render after a one-character marker, so they carry no prompt.
func NewSearchState(cfg layout.LayoutConfig) SearchState {
	s := SearchState{
		Input:       newInput("Search bookmarks...", cfg.Input.SearchCharLimit, cfg.Input.StandardWidth),
		FilterInput: newInput("Filter folders...", cfg.Input.FilterCharLimit, cfg.Input.FilterWidth),
	}
	s.Input.Prompt = ""
	s.FilterInput.Prompt = ""
	return s
}

// EditField identifies the focused input of the edit modal.
type EditField int

const (
	FieldTitle EditField = iota
	FieldURL
	FieldTags
)

// ModalState holds state for the bookmark editor and the folder form.
type ModalState struct {
	TitleInput textinput.Model // Bookmark title or folder name
	URLInput   textinput.Model
	TagsInput  textinput.Model
	Focus      EditField
	Editing    model.Bookmark // Bookmark as it was when the editor opened
	FieldError string         // Validation problem shown under the form

	// Bookmarks awaiting delete confirmation
	DeleteIDs []int64

	// Tag autocompletion
	TagSuggestions   []string
	TagSuggestionIdx int // -1 = none
}

// NewModalState creates a new ModalState with initialized inputs.
func NewModalState(cfg layout.LayoutConfig) ModalState {
	return ModalState{
		TitleInput:       newInput("Title", cfg.Input.TitleCharLimit, cfg.Input.StandardWidth),
		URLInput:         newInput("URL", cfg.Input.URLCharLimit, cfg.Input.StandardWidth),
		TagsInput:        newInput("tag1, tag2, tag3", cfg.Input.TagsCharLimit, cfg.Input.StandardWidth),
		TagSuggestionIdx: -1,
	}
}

// ResetInputs clears all modal inputs for a new modal session.
func (m *ModalState) ResetInputs() {
	m.TitleInput.Reset()
	m.URLInput.Reset()
	m.TagsInput.Reset()
	m.TitleInput.Blur()
	m.URLInput.Blur()
	m.TagsInput.Blur()
	m.Focus = FieldTitle
	m.Editing = model.Bookmark{}
	m.FieldError = ""
	m.DeleteIDs = nil
	m.TagSuggestions = nil
	m.TagSuggestionIdx = -1
}

// EditedBookmark returns the bookmark as described by the inputs.
func (m *ModalState) EditedBookmark() model.Bookmark {
	edited := m.Editing
	edited.Title = strings.TrimSpace(m.TitleInput.Value())
	edited.URL = strings.TrimSpace(m.URLInput.Value())
	edited.Tags = model.ParseTags(m.TagsInput.Value())
	return edited
}

// CurrentTagToken returns the tag being typed: the text after the last comma.
func (m *ModalState) CurrentTagToken() string {
	value := m.TagsInput.Value()
	if idx := strings.LastIndex(value, ","); idx >= 0 {
		value = value[idx+1:]
	}
	return strings.TrimSpace(value)
}

// AcceptSuggestion replaces the tag being typed with the selected suggestion.
func (m *ModalState) AcceptSuggestion() bool {
	if m.TagSuggestionIdx < 0 || m.TagSuggestionIdx >= len(m.TagSuggestions) {
		return false
	}
	value := m.TagsInput.Value()
	prefix := ""
	if idx := strings.LastIndex(value, ","); idx >= 0 {
		prefix = value[:idx+1] + " "
	}
	m.TagsInput.SetValue(prefix + m.TagSuggestions[m.TagSuggestionIdx] + ", ")
	m.TagsInput.CursorEnd()
	m.TagSuggestions = nil
	m.TagSuggestionIdx = -1
	return true
}

// MoveState holds state for the destination chooser of a move.
type MoveState struct {
	Nav    *nav.Navigator // Browses destinations independently of the main view
	Cursor int
	IDs    []int64 // Bookmarks to move
}

// NewMoveState creates a MoveState starting at cwd.
func NewMoveState(cwd string, ids []int64) MoveState {
	n := nav.New()
	if cwd != model.RootPath {
		n.Enter(cwd)
	}
	return MoveState{Nav: n, IDs: ids}
}

// Destination returns the chosen folder path; the root means no folder.
func (m MoveState) Destination() string {
	return m.Nav.SelectedFilter()
}

// CredentialForm holds the API key entry shown while authentication is required.
type CredentialForm struct {
	Input textinput.Model
}

// NewCredentialForm creates a masked API key input.
func NewCredentialForm(cfg layout.LayoutConfig) CredentialForm {
	input := newInput("API key", cfg.Input.KeyCharLimit, cfg.Input.StandardWidth)
	input.EchoMode = textinput.EchoPassword
	return CredentialForm{Input: input}
}
