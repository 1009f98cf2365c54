package tui

import "github.com/nikbrunner/bmr/internal/model"

// RowKind distinguishes entries of the folder pane.
type RowKind int

const (
	RowFolder RowKind = iota
	RowNotInFolder
)

// FolderRow is one entry of a folder list.
type FolderRow struct {
	Kind           RowKind
	Folder         model.Folder
	MatchedIndexes []int
}

// Title returns a display title for the row.
func (r FolderRow) Title() string {
	if r.Kind == RowNotInFolder {
		return "Not in folder"
	}
	return r.Folder.Name()
}

// Path returns the filter value the row selects.
func (r FolderRow) Path(cwd string) string {
	if r.Kind == RowNotInFolder {
		return model.NotInFolderPath(cwd)
	}
	return r.Folder.Path
}
