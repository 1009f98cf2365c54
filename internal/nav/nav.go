// Package nav tracks which folder is being browsed and which bookmarks are shown.
package nav

import "github.com/nikbrunner/bmr/internal/model"

// Navigator is the folder navigation state machine.
//
// The working path is the folder whose children are listed. The selected
// filter is the path the bookmark list is restricted to; it is either the
// working path, a listed child, or the not-in-folder sentinel.
type Navigator struct {
	working   string
	filter    string
	history   []string
	search    string
	selection Selection
	selecting bool
}

// New returns a navigator at the root.
func New() *Navigator {
	return &Navigator{working: model.RootPath, filter: model.RootPath}
}

// WorkingPath returns the folder whose children are listed.
func (n *Navigator) WorkingPath() string { return n.working }

// SelectedFilter returns the path the bookmark list is filtered by.
func (n *Navigator) SelectedFilter() string { return n.filter }

// Search returns the folder name filter.
func (n *Navigator) Search() string { return n.search }

// History returns the previously visited working paths, oldest first.
func (n *Navigator) History() []string {
	return append([]string(nil), n.history...)
}

// CanGoBack reports whether Back will change the working path.
func (n *Navigator) CanGoBack() bool { return len(n.history) > 0 }

// Selection returns the bulk selection; ok is false outside bulk mode.
func (n *Navigator) Selection() (s Selection, ok bool) {
	return n.selection, n.selecting
}

// Enter makes path the working path, remembering the current one.
func (n *Navigator) Enter(path string) {
	path = model.NormalizeCWD(path)
	n.history = append(n.history, n.working)
	n.working = path
	n.filter = path
	n.search = ""
	n.ClearSelection()
}

// Back returns to the previous working path. With no history it only
// resets the filter to the working path.
func (n *Navigator) Back() {
	if len(n.history) > 0 {
		last := len(n.history) - 1
		n.working = n.history[last]
		n.history = n.history[:last]
		n.search = ""
	}
	n.filter = n.working
	n.ClearSelection()
}

// Up enters the parent of the working path. It reports false at the root.
func (n *Navigator) Up() bool {
	if n.working == model.RootPath {
		return false
	}
	n.Enter(model.NormalizeCWD(model.ParentPath(n.working)))
	return true
}

// Select filters the bookmark list by a listed folder. Selecting the
// same folder again restores the working path.
func (n *Navigator) Select(path string) {
	if n.filter == path {
		n.filter = n.working
		return
	}
	n.filter = path
}

// SelectNotInFolder filters by bookmarks without a folder. Choosing it
// twice restores the working path.
func (n *Navigator) SelectNotInFolder() {
	n.Select(model.NotInFolderPath(n.working))
}

// ClearFilter restores the filter to the working path.
func (n *Navigator) ClearFilter() {
	n.filter = n.working
}

// SetSearch changes the folder name filter. Searching ends bulk mode.
func (n *Navigator) SetSearch(pattern string) {
	n.search = pattern
	n.ClearSelection()
}

// BeginSelection enters bulk mode with nothing selected. Bulk mode ends
// any folder search.
func (n *Navigator) BeginSelection() {
	if n.selecting {
		return
	}
	n.selecting = true
	n.selection = Selection{}
	n.search = ""
}

// Toggle adds or removes a bookmark from the bulk selection, entering
// bulk mode if needed.
func (n *Navigator) Toggle(id int64) {
	n.BeginSelection()
	n.selection = n.selection.Toggle(id)
}

// ClearSelection leaves bulk mode.
func (n *Navigator) ClearSelection() {
	n.selecting = false
	n.selection = Selection{}
}
