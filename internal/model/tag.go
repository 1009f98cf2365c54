package model

// Tag represents a tag known to the server.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CursorID returns the id used as the pagination cursor.
func (t Tag) CursorID() int64 {
	return t.ID
}

// TagNames flattens tag pages into names, preserving order.
func TagNames(pages [][]Tag) []string {
	var names []string
	for _, page := range pages {
		for _, t := range page {
			names = append(names, t.Name)
		}
	}
	return names
}
