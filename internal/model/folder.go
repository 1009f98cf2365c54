package model

import "strings"

// RootPath is the path of the root folder.
const RootPath = "/"

// Folder represents a server-side folder identified by its unique path.
type Folder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// CursorID returns the id used as the pagination cursor.
func (f Folder) CursorID() int64 {
	return f.ID
}

// Name returns the leaf name of the folder.
func (f Folder) Name() string {
	return LeafName(f.Path)
}

// ParentPath returns everything before the last slash.
// ParentPath("/a/b") == "/a", ParentPath("/a") == "" and ParentPath("/") == "".
func ParentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// LeafName returns everything after the last slash.
// LeafName("/a/b") == "b" and LeafName("/") == "".
func LeafName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// JoinPath builds the path of a child folder called name under cwd.
func JoinPath(cwd, name string) string {
	name = strings.Trim(name, "/")
	if cwd == "" || cwd == RootPath {
		return RootPath + name
	}
	return strings.TrimRight(cwd, "/") + "/" + name
}

// NotInFolderPath returns the filter value meaning "bookmarks directly under
// cwd without a folder". It never names a real folder.
func NotInFolderPath(cwd string) string {
	if cwd == "" || cwd == RootPath {
		return "//"
	}
	return cwd + "//"
}

// IsNotInFolderPath reports whether path is a not-in-folder filter value.
func IsNotInFolderPath(path string) bool {
	return strings.HasSuffix(path, "//")
}

// NormalizeCWD maps the empty path to the root.
func NormalizeCWD(path string) string {
	if path == "" {
		return RootPath
	}
	return path
}
