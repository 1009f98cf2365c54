package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/pager"
)

// BookmarksPath is the bookmark collection endpoint.
const BookmarksPath = "/api/bookmarks"

// DefaultLimit is the page size used when a query does not set one.
const DefaultLimit = 10

// BookmarkQuery filters the bookmark list.
type BookmarkQuery struct {
	Q     string
	Limit int
	// CWD restricts the list to a folder path, or to bookmarks without a
	// folder when it ends in "//".
	CWD string
}

// PageSize returns the effective limit.
func (q BookmarkQuery) PageSize() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Values maps q to "q", the page size to "limit" and cwd to "cwd".
func (q BookmarkQuery) Values() url.Values {
	values := url.Values{}
	if q.Q != "" {
		values.Set("q", q.Q)
	}
	values.Set("limit", strconv.Itoa(q.PageSize()))
	if q.CWD != "" {
		values.Set("cwd", q.CWD)
	}
	return values
}

// FetchBookmarks loads one page of bookmarks by page key.
func (c *Client) FetchBookmarks(ctx context.Context, key string) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	if err := c.DoJSON(ctx, http.MethodGet, key, nil, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// AllBookmarks walks every page matching q.
func (c *Client) AllBookmarks(ctx context.Context, q BookmarkQuery) ([]model.Bookmark, error) {
	return pager.Collect(ctx, BookmarksPath, q, c.FetchBookmarks)
}

// UpdateBookmark sends a partial update. An empty patch sends nothing.
// A URL in the patch is validated before the request is issued.
func (c *Client) UpdateBookmark(ctx context.Context, id int64, patch model.BookmarkPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if patch.URL != nil {
		if err := model.ValidateURL(*patch.URL); err != nil {
			return err
		}
	}
	return c.Exec(ctx, http.MethodPatch, bookmarkPath(id), patch)
}

// DeleteBookmark removes a bookmark.
func (c *Client) DeleteBookmark(ctx context.Context, id int64) error {
	return c.Exec(ctx, http.MethodDelete, bookmarkPath(id), nil)
}

func bookmarkPath(id int64) string {
	return fmt.Sprintf("%s/%d", BookmarksPath, id)
}
