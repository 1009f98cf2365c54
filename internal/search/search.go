package search

import (
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/sahilm/fuzzy"
)

// FolderResult represents a folder whose leaf name matched.
type FolderResult struct {
	Folder         model.Folder
	MatchedIndexes []int
	Score          int
}

// folderNames implements fuzzy.Source over folder leaf names.
type folderNames []model.Folder

func (fn folderNames) String(i int) string {
	return fn[i].Name()
}

func (fn folderNames) Len() int {
	return len(fn)
}

// FilterFolders matches folders by leaf name.
// An empty pattern keeps every folder in its original order; otherwise
// results are sorted by match score (best first).
func FilterFolders(folders []model.Folder, pattern string) []FolderResult {
	if pattern == "" {
		results := make([]FolderResult, len(folders))
		for i, f := range folders {
			results[i] = FolderResult{Folder: f}
		}
		return results
	}

	matches := fuzzy.FindFrom(pattern, folderNames(folders))

	results := make([]FolderResult, len(matches))
	for i, m := range matches {
		results[i] = FolderResult{
			Folder:         folders[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source for bookmark slice.
type bookmarkTitles []model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// FuzzySearchBookmarks narrows already fetched bookmarks by title.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(bookmarks []model.Bookmark, query string) []SearchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, bookmarkTitles(bookmarks))

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// SuggestTags returns known tag names matching query, excluding those
// already chosen. At most limit names are returned.
func SuggestTags(known []string, query string, chosen []string, limit int) []string {
	if query == "" {
		return nil
	}

	skip := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		skip[c] = true
	}

	var candidates []string
	for _, name := range known {
		if !skip[name] {
			candidates = append(candidates, name)
		}
	}

	var suggestions []string
	for _, m := range fuzzy.Find(query, candidates) {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}
