package model

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ErrInvalidURL is returned when a bookmark URL is not an absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// Bookmark represents a saved URL as served by the bookmark API.
type Bookmark struct {
	ID    int64    `json:"id"` // server-assigned
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags"`
}

// CursorID returns the id used as the pagination cursor.
func (b Bookmark) CursorID() int64 {
	return b.ID
}

// BookmarkPatch holds a partial bookmark update. Nil fields are left untouched.
type BookmarkPatch struct {
	Title *string   `json:"title,omitempty"`
	URL   *string   `json:"url,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Tags == nil
}

// Diff builds the patch that turns old into edited.
// Tags are trimmed and blank tags dropped before comparing.
func Diff(old, edited Bookmark) BookmarkPatch {
	var patch BookmarkPatch

	if old.Title != edited.Title {
		title := edited.Title
		patch.Title = &title
	}
	if old.URL != edited.URL {
		u := edited.URL
		patch.URL = &u
	}

	tags := NormalizeTags(edited.Tags)
	if !slices.Equal(NormalizeTags(old.Tags), tags) {
		patch.Tags = &tags
	}

	return patch
}

// Apply returns a copy of b with the patch applied.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Tags != nil {
		b.Tags = slices.Clone(*p.Tags)
	}
	return b
}

// NormalizeTags trims whitespace and drops empty and duplicate tags, keeping order.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

// ParseTags splits a comma-separated tag list.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// ValidateURL checks that raw is a well-formed absolute URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, raw)
	}
	return nil
}
