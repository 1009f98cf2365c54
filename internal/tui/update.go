package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
	"github.com/nikbrunner/bmr/internal/storage"
)

const maxTagSuggestions = 5

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case ModeCredential:
		return a.handleCredentialMode(msg)
	case ModeHelp:
		return a.handleHelpMode(msg)
	case ModeSearch:
		return a.handleSearchMode(msg)
	case ModeFilter:
		return a.handleFilterMode(msg)
	case ModeEditBookmark:
		return a.handleEditMode(msg)
	case ModeAddFolder:
		return a.handleAddFolderMode(msg)
	case ModeConfirmDelete:
		return a.handleConfirmDeleteMode(msg)
	case ModeMove:
		return a.handleMoveMode(msg)
	}
	return a.handleNormalMode(msg)
}

func (a App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.setCursor(0)
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false
	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
		return a, nil

	case key.Matches(msg, a.keys.SwitchPane):
		if a.focus == PaneFolders {
			a.focus = PaneBookmarks
		} else {
			a.focus = PaneFolders
		}
		return a, nil

	case key.Matches(msg, a.keys.Cancel):
		return a.handleCancel()

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.search.Input.SetValue(a.search.Query)
		a.search.Input.CursorEnd()
		a.search.Input.Focus()
		return a, nil

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.focus = PaneFolders
		a.search.FilterInput.SetValue(a.nav.Search())
		a.search.FilterInput.CursorEnd()
		a.search.FilterInput.Focus()
		return a, nil

	case key.Matches(msg, a.keys.Reload):
		a.bookmarks.Invalidate()
		return a, tea.Batch(
			a.loadFolders(a.nav.WorkingPath()),
			a.loadBookmarks(a.bookmarks.Refresh),
		)

	case key.Matches(msg, a.keys.Parent):
		if !a.nav.Up() {
			return a, nil
		}
		return a, a.afterNavigation()

	case key.Matches(msg, a.keys.NotInFolder):
		a.nav.SelectNotInFolder()
		return a, a.applyBookmarkQuery()

	case key.Matches(msg, a.keys.AddFolder):
		a.openAddFolder()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		return a.moveDown()

	case key.Matches(msg, a.keys.Up):
		a.setCursor(a.cursor() - 1)
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		a.setCursor(a.listLen() - 1)
		return a, nil
	}

	if a.focus == PaneFolders {
		return a.handleFolderPaneKey(msg)
	}
	return a.handleBookmarkPaneKey(msg)
}

func (a App) handleFolderPaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Left):
		a.nav.Back()
		return a, a.afterNavigation()

	case key.Matches(msg, a.keys.Right):
		row, ok := a.currentFolderRow()
		if !ok {
			return a, nil
		}
		if row.Kind == RowNotInFolder {
			a.nav.SelectNotInFolder()
			return a, a.applyBookmarkQuery()
		}
		a.nav.Enter(row.Folder.Path)
		return a, a.afterNavigation()

	case key.Matches(msg, a.keys.Select):
		row, ok := a.currentFolderRow()
		if !ok {
			return a, nil
		}
		a.nav.Select(row.Path(a.nav.WorkingPath()))
		return a, a.applyBookmarkQuery()
	}
	return a, nil
}

func (a App) handleBookmarkPaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Left):
		a.focus = PaneFolders
		return a, nil

	case key.Matches(msg, a.keys.Right), key.Matches(msg, a.keys.Open):
		if b, ok := a.currentBookmark(); ok {
			if err := a.openURL(b.URL); err != nil {
				a.setMessage(MessageError, "Failed to open URL: "+err.Error())
			}
		}
		return a, nil

	case key.Matches(msg, a.keys.YankURL):
		if b, ok := a.currentBookmark(); ok {
			if err := a.copyText(b.URL); err != nil {
				a.setMessage(MessageError, "Failed to copy URL: "+err.Error())
			} else {
				a.setMessage(MessageSuccess, "Copied URL")
			}
		}
		return a, nil

	case key.Matches(msg, a.keys.Select):
		if b, ok := a.currentBookmark(); ok {
			a.nav.Toggle(b.ID)
			a.search.FilterInput.Reset()
		}
		return a, nil

	case key.Matches(msg, a.keys.Visual):
		if _, selecting := a.nav.Selection(); selecting {
			a.nav.ClearSelection()
		} else {
			a.nav.BeginSelection()
			a.search.FilterInput.Reset()
		}
		return a, nil

	case key.Matches(msg, a.keys.LoadMore):
		return a, a.loadBookmarks(a.bookmarks.LoadMore)

	case key.Matches(msg, a.keys.Edit):
		if b, ok := a.currentBookmark(); ok {
			a.openEditor(b)
		}
		return a, nil

	case key.Matches(msg, a.keys.Delete):
		if ids := a.targetIDs(); len(ids) > 0 {
			a.modal.ResetInputs()
			a.modal.DeleteIDs = ids
			a.mode = ModeConfirmDelete
		}
		return a, nil

	case key.Matches(msg, a.keys.Move):
		if ids := a.targetIDs(); len(ids) > 0 {
			a.move = NewMoveState(a.nav.WorkingPath(), ids)
			a.mode = ModeMove
			return a, a.loadFolders(a.move.Nav.WorkingPath())
		}
		return a, nil
	}
	return a, nil
}

// handleCancel clears the innermost active narrowing.
func (a App) handleCancel() (tea.Model, tea.Cmd) {
	if _, selecting := a.nav.Selection(); selecting {
		a.nav.ClearSelection()
		return a, nil
	}
	if a.nav.Search() != "" {
		a.nav.SetSearch("")
		a.search.FilterInput.Reset()
		a.folderCursor = 0
		return a, nil
	}
	if a.search.Query != "" {
		a.search.Query = ""
		a.search.Input.Reset()
		return a, a.applyBookmarkQuery()
	}
	if a.nav.SelectedFilter() != a.nav.WorkingPath() {
		a.nav.ClearFilter()
		return a, a.applyBookmarkQuery()
	}
	return a, nil
}

// afterNavigation refreshes both panes once the working path changed.
func (a *App) afterNavigation() tea.Cmd {
	a.folderCursor = 0
	a.search.FilterInput.Reset()
	return tea.Batch(
		a.loadFolders(a.nav.WorkingPath()),
		a.applyBookmarkQuery(),
	)
}

// moveDown advances the cursor and pulls the next page at the end of the list.
func (a App) moveDown() (tea.Model, tea.Cmd) {
	if a.cursor() < a.listLen()-1 {
		a.setCursor(a.cursor() + 1)
		return a, nil
	}
	if a.focus == PaneBookmarks {
		snap := a.bookmarks.Snapshot()
		if !snap.ReachingEnd && !snap.Loading && snap.Err == nil {
			return a, a.loadBookmarks(a.bookmarks.LoadMore)
		}
	}
	return a, nil
}

func (a App) cursor() int {
	if a.focus == PaneFolders {
		return a.folderCursor
	}
	return a.bookmarkCursor
}

func (a App) listLen() int {
	if a.focus == PaneFolders {
		return len(a.FolderRows())
	}
	return len(a.Bookmarks())
}

func (a *App) setCursor(pos int) {
	pos = clampCursor(pos, a.listLen())
	if a.focus == PaneFolders {
		a.folderCursor = pos
	} else {
		a.bookmarkCursor = pos
	}
}

func clampCursor(pos, n int) int {
	if pos >= n {
		pos = n - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (a App) currentFolderRow() (FolderRow, bool) {
	rows := a.FolderRows()
	if a.folderCursor < 0 || a.folderCursor >= len(rows) {
		return FolderRow{}, false
	}
	return rows[a.folderCursor], true
}

func (a App) currentBookmark() (model.Bookmark, bool) {
	items := a.Bookmarks()
	if a.bookmarkCursor < 0 || a.bookmarkCursor >= len(items) {
		return model.Bookmark{}, false
	}
	return items[a.bookmarkCursor], true
}

// targetIDs returns the bulk selection, or the bookmark under the cursor
// outside bulk mode.
func (a App) targetIDs() []int64 {
	if sel, selecting := a.nav.Selection(); selecting {
		return sel.IDs()
	}
	if b, ok := a.currentBookmark(); ok {
		return []int64{b.ID}
	}
	return nil
}

// Search and filter inputs

func (a App) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.search.Input.Blur()
		return a, nil

	case tea.KeyEnter:
		a.mode = ModeNormal
		a.search.Input.Blur()
		query := strings.TrimSpace(a.search.Input.Value())
		if query == a.search.Query {
			return a, nil
		}
		a.search.Query = query
		a.nav.ClearSelection()
		a.focus = PaneBookmarks
		return a, a.applyBookmarkQuery()
	}

	var cmd tea.Cmd
	a.search.Input, cmd = a.search.Input.Update(msg)
	return a, cmd
}

func (a App) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.search.FilterInput.Blur()
		a.search.FilterInput.Reset()
		a.nav.SetSearch("")
		a.folderCursor = 0
		return a, nil

	case tea.KeyEnter:
		a.mode = ModeNormal
		a.search.FilterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.search.FilterInput, cmd = a.search.FilterInput.Update(msg)
	if value := a.search.FilterInput.Value(); value != a.nav.Search() {
		a.nav.SetSearch(value)
		a.folderCursor = 0
	}
	return a, cmd
}

// Bookmark editor

func (a *App) openEditor(b model.Bookmark) {
	a.modal.ResetInputs()
	a.modal.Editing = b
	a.modal.TitleInput.SetValue(b.Title)
	a.modal.URLInput.SetValue(b.URL)
	a.modal.TagsInput.SetValue(strings.Join(b.Tags, ", "))
	a.modal.TitleInput.CursorEnd()
	a.modal.TitleInput.Focus()
	a.mode = ModeEditBookmark
}

func (a *App) focusField(field EditField) {
	a.modal.TitleInput.Blur()
	a.modal.URLInput.Blur()
	a.modal.TagsInput.Blur()
	a.modal.Focus = field
	switch field {
	case FieldTitle:
		a.modal.TitleInput.Focus()
	case FieldURL:
		a.modal.URLInput.Focus()
	case FieldTags:
		a.modal.TagsInput.Focus()
	}
}

func (a App) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil

	case tea.KeyEnter:
		return a.submitEdit()

	case tea.KeyTab:
		if a.modal.Focus == FieldTags && a.modal.AcceptSuggestion() {
			return a, nil
		}
		a.focusField((a.modal.Focus + 1) % 3)
		return a, nil

	case tea.KeyShiftTab:
		a.focusField((a.modal.Focus + 2) % 3)
		return a, nil

	case tea.KeyUp, tea.KeyDown:
		if a.modal.Focus == FieldTags && len(a.modal.TagSuggestions) > 0 {
			n := len(a.modal.TagSuggestions)
			if msg.Type == tea.KeyDown {
				a.modal.TagSuggestionIdx = (a.modal.TagSuggestionIdx + 1) % n
			} else {
				a.modal.TagSuggestionIdx = (a.modal.TagSuggestionIdx - 1 + n) % n
			}
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.modal.Focus {
	case FieldTitle:
		a.modal.TitleInput, cmd = a.modal.TitleInput.Update(msg)
	case FieldURL:
		a.modal.URLInput, cmd = a.modal.URLInput.Update(msg)
	case FieldTags:
		before := a.modal.TagsInput.Value()
		a.modal.TagsInput, cmd = a.modal.TagsInput.Update(msg)
		if a.modal.TagsInput.Value() != before {
			return a, tea.Batch(cmd, a.queryTags())
		}
	}
	return a, cmd
}

// queryTags asks the server for tags matching the token being typed.
func (a *App) queryTags() tea.Cmd {
	token := a.modal.CurrentTagToken()
	if token == "" {
		a.modal.TagSuggestions = nil
		a.modal.TagSuggestionIdx = -1
		return nil
	}
	a.tags.SetQuery(api.TagQuery{Q: token, Limit: a.tagPageSize})
	a.updateTagSuggestions()
	return a.loadTags(a.tags.Load)
}

// updateTagSuggestions ranks the loaded tags against the token being typed.
func (a *App) updateTagSuggestions() {
	if a.mode != ModeEditBookmark || a.modal.Focus != FieldTags {
		return
	}
	token := a.modal.CurrentTagToken()
	if token == "" {
		a.modal.TagSuggestions = nil
		a.modal.TagSuggestionIdx = -1
		return
	}
	value := a.modal.TagsInput.Value()
	chosen := []string{}
	if idx := strings.LastIndex(value, ","); idx >= 0 {
		chosen = model.ParseTags(value[:idx])
	}
	known := model.TagNames(a.tags.Snapshot().Pages)
	a.modal.TagSuggestions = search.SuggestTags(known, token, chosen, maxTagSuggestions)
	a.modal.TagSuggestionIdx = -1
	if len(a.modal.TagSuggestions) > 0 {
		a.modal.TagSuggestionIdx = 0
	}
}

func (a App) submitEdit() (tea.Model, tea.Cmd) {
	edited := a.modal.EditedBookmark()
	if edited.Title == "" {
		a.modal.FieldError = "Title must not be empty"
		return a, nil
	}
	if err := model.ValidateURL(edited.URL); err != nil {
		a.modal.FieldError = err.Error()
		return a, nil
	}

	patch := model.Diff(a.modal.Editing, edited)
	id := a.modal.Editing.ID
	a.closeModal()
	if patch.IsEmpty() {
		a.setMessage(MessageInfo, "No changes")
		return a, nil
	}

	client := a.client
	return a, a.mutate("update", "Updated", "", []int64{id}, func(ctx context.Context, id int64) error {
		return client.UpdateBookmark(ctx, id, patch)
	})
}

func (a *App) closeModal() {
	a.modal.ResetInputs()
	a.mode = ModeNormal
}

// Folder form

func (a *App) openAddFolder() {
	a.modal.ResetInputs()
	a.modal.TitleInput.Placeholder = "Folder name"
	a.modal.TitleInput.SetValue(a.nav.Search())
	a.modal.TitleInput.CursorEnd()
	a.modal.TitleInput.Focus()
	a.mode = ModeAddFolder
}

func (a App) handleAddFolderMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.modal.TitleInput.Placeholder = "Title"
		a.closeModal()
		return a, nil

	case tea.KeyEnter:
		name := strings.Trim(strings.TrimSpace(a.modal.TitleInput.Value()), "/")
		if name == "" {
			a.modal.FieldError = "Folder name must not be empty"
			return a, nil
		}
		cwd := a.nav.WorkingPath()
		path := model.JoinPath(cwd, name)
		a.modal.TitleInput.Placeholder = "Title"
		a.closeModal()
		a.nav.SetSearch("")
		a.search.FilterInput.Reset()

		client := a.client
		return a, a.mutate("create folder", "Created folder "+path, cwd, []int64{0}, func(ctx context.Context, _ int64) error {
			return client.CreateFolder(ctx, path)
		})
	}

	var cmd tea.Cmd
	a.modal.TitleInput, cmd = a.modal.TitleInput.Update(msg)
	return a, cmd
}

// Delete confirmation

func (a App) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		ids := a.modal.DeleteIDs
		a.closeModal()
		a.nav.ClearSelection()
		return a, a.mutate("delete", "Deleted", "", ids, a.client.DeleteBookmark)

	case "n", "esc", "q":
		a.closeModal()
		return a, nil
	}
	return a, nil
}

// Move dialog

func (a App) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.MoveRows()

	switch {
	case key.Matches(msg, a.keys.Cancel), msg.String() == "q":
		a.move = MoveState{}
		a.mode = ModeNormal
		return a, nil

	case msg.Type == tea.KeyEnter:
		return a.submitMove()

	case key.Matches(msg, a.keys.Down):
		a.move.Cursor = clampCursor(a.move.Cursor+1, len(rows))
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.move.Cursor = clampCursor(a.move.Cursor-1, len(rows))
		return a, nil

	case key.Matches(msg, a.keys.Right):
		if a.move.Cursor < len(rows) {
			a.move.Nav.Enter(rows[a.move.Cursor].Folder.Path)
			a.move.Cursor = 0
			return a, a.loadFolders(a.move.Nav.WorkingPath())
		}
		return a, nil

	case key.Matches(msg, a.keys.Left):
		a.move.Nav.Back()
		a.move.Cursor = 0
		return a, a.loadFolders(a.move.Nav.WorkingPath())

	case key.Matches(msg, a.keys.Select):
		if a.move.Cursor < len(rows) {
			a.move.Nav.Select(rows[a.move.Cursor].Folder.Path)
		}
		return a, nil
	}
	return a, nil
}

func (a App) submitMove() (tea.Model, tea.Cmd) {
	dest := a.move.Destination()
	ids := a.move.IDs
	client := a.client

	var fn func(ctx context.Context, id int64) error
	if dest == model.RootPath {
		fn = client.MoveOut
	} else {
		folder, ok := a.byPath[dest]
		if !ok {
			a.setMessage(MessageError, "Unknown folder "+dest)
			return a, nil
		}
		fn = func(ctx context.Context, id int64) error {
			return client.MoveIn(ctx, id, folder.ID)
		}
	}

	a.move = MoveState{}
	a.mode = ModeNormal
	a.nav.ClearSelection()
	return a, a.mutate("move", "Moved", "", ids, fn)
}

// Help overlay

func (a App) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Help, a.keys.Cancel, a.keys.Quit) {
		a.mode = ModeNormal
	}
	return a, nil
}

// API key prompt

func (a App) handleCredentialMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit

	case tea.KeyEnter:
		if err := a.creds.Save(strings.TrimSpace(a.credential.Input.Value())); err != nil {
			if errors.Is(err, storage.ErrEmptyCredential) {
				a.setMessage(MessageError, "API key must not be empty")
			} else {
				a.setMessage(MessageError, "Failed to save API key: "+err.Error())
			}
			return a, nil
		}
		a.credential.Input.Reset()
		a.credential.Input.Blur()
		a.auth.Resolve()
		a.mode = ModeNormal
		a.setMessage(MessageSuccess, "API key saved")
		return a, tea.Batch(
			a.loadFolders(a.nav.WorkingPath()),
			a.loadBookmarks(a.bookmarks.Refresh),
		)
	}

	var cmd tea.Cmd
	a.credential.Input, cmd = a.credential.Input.Update(msg)
	return a, cmd
}

// Command results

func (a App) handleFoldersLoaded(msg foldersLoadedMsg) (tea.Model, tea.Cmd) {
	delete(a.loadingFolders, msg.cwd)
	if msg.err != nil {
		a.folderErrs[msg.cwd] = msg.err
	} else {
		delete(a.folderErrs, msg.cwd)
		a.folders[msg.cwd] = msg.folders
		for _, f := range msg.folders {
			a.byPath[f.Path] = f
		}
	}
	a.folderCursor = clampCursor(a.folderCursor, len(a.FolderRows()))
	return a.checkAuth(), nil
}

func (a App) handleBookmarksLoaded(msg bookmarksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !api.IsAuthError(msg.err) {
		a.setMessage(MessageError, "Failed to load bookmarks: "+msg.err.Error())
	}
	a.bookmarkCursor = clampCursor(a.bookmarkCursor, len(a.Bookmarks()))
	return a.checkAuth(), nil
}

func (a App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.err != nil {
		if !api.IsAuthError(msg.err) {
			a.setMessage(MessageError, fmt.Sprintf("Failed to %s: %v", msg.action, msg.err))
		}
	} else {
		a.setMessage(MessageSuccess, describeMutation(msg))
	}

	// A rejected key was just cleared; refreshing now would only report a
	// missing key. The credential view reloads after a new key is saved.
	if api.IsAuthError(msg.err) {
		return a.checkAuth(), nil
	}

	// Partial batches still changed the server, so refresh either way.
	if msg.folderCWD != "" {
		cmds = append(cmds, a.loadFolders(msg.folderCWD))
	}
	if msg.count > 0 {
		a.bookmarks.Invalidate()
		cmds = append(cmds, a.loadBookmarks(a.bookmarks.Refresh))
	}
	return a.checkAuth(), tea.Batch(cmds...)
}

func describeMutation(msg mutationDoneMsg) string {
	if msg.folderCWD != "" {
		return msg.done
	}
	noun := "bookmark"
	if msg.count != 1 {
		noun = "bookmarks"
	}
	return fmt.Sprintf("%s %d %s", msg.done, msg.count, noun)
}
