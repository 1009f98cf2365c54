package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/pager"
	"gotest.tools/v3/assert"
)

func stringPtr(s string) *string { return &s }

func TestBookmarkQuery_Values(t *testing.T) {
	tests := []struct {
		name  string
		query api.BookmarkQuery
		want  string
	}{
		{"defaults", api.BookmarkQuery{}, "limit=10"},
		{"search", api.BookmarkQuery{Q: "go lang", Limit: 5}, "limit=5&q=go+lang"},
		{"folder", api.BookmarkQuery{CWD: "/dev"}, "cwd=%2Fdev&limit=10"},
		{"not in folder", api.BookmarkQuery{CWD: "//"}, "cwd=%2F%2F&limit=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.query.Values().Encode(), tt.want)
		})
	}
}

func TestTagQuery_Values(t *testing.T) {
	assert.Equal(t, api.TagQuery{}.Values().Encode(), "")
	assert.Equal(t, api.TagQuery{Q: "go", Limit: 20}.Values().Encode(), "q=go")
	assert.Equal(t, api.TagQuery{}.PageSize(), 10)
	assert.Equal(t, api.TagQuery{Limit: 20}.PageSize(), 20)
}

func seedBookmarks(f *fixture, n int) {
	for i := 1; i <= n; i++ {
		f.server.AddBookmark("", fmt.Sprintf("Bookmark %d", i), fmt.Sprintf("https://example.com/%d", i))
	}
}

func TestBookmarks_PagingAgainstService(t *testing.T) {
	f := newFixture(t, "secret", "secret")
	seedBookmarks(f, 13)
	ctx := context.Background()

	c := pager.New(api.BookmarksPath, f.client.FetchBookmarks)
	c.SetQuery(api.BookmarkQuery{Limit: 10})

	assert.NilError(t, c.Load(ctx))
	snap := c.Snapshot()
	assert.Equal(t, len(snap.Pages[0]), 10)
	assert.Assert(t, !snap.ReachingEnd)

	assert.NilError(t, c.LoadMore(ctx))
	snap = c.Snapshot()
	assert.Equal(t, len(snap.Pages[1]), 3)
	assert.Assert(t, snap.ReachingEnd)

	assert.NilError(t, c.LoadMore(ctx))

	var uris []string
	for _, r := range f.server.Requests() {
		uris = append(uris, r.URI)
	}
	assert.DeepEqual(t, uris, []string{
		"/api/bookmarks?limit=10",
		"/api/bookmarks?before=4&limit=10",
	})

	seen := map[int64]bool{}
	for _, b := range snap.Items() {
		assert.Assert(t, !seen[b.ID], "duplicate bookmark %d", b.ID)
		seen[b.ID] = true
	}
	assert.Equal(t, len(seen), 13)
}

func TestBookmarks_UpdateThenRevalidateEveryPage(t *testing.T) {
	f := newFixture(t, "", "")
	seedBookmarks(f, 25)
	ctx := context.Background()

	c := pager.New(api.BookmarksPath, f.client.FetchBookmarks)
	c.SetQuery(api.BookmarkQuery{Limit: 10})
	assert.NilError(t, c.Load(ctx))
	assert.NilError(t, c.LoadMore(ctx))
	f.server.ResetRequests()

	assert.NilError(t, f.client.UpdateBookmark(ctx, 5, model.BookmarkPatch{Title: stringPtr("New")}))
	assert.NilError(t, c.Revalidate(ctx))

	requests := f.server.Requests()
	assert.Equal(t, len(requests), 3)
	assert.Equal(t, requests[0].Method, http.MethodPatch)
	assert.Equal(t, requests[0].URI, "/api/bookmarks/5")
	assert.Equal(t, strings.TrimSpace(requests[0].Body), `{"title":"New"}`)
	assert.Equal(t, requests[1].URI, "/api/bookmarks?limit=10")
	assert.Equal(t, requests[2].URI, "/api/bookmarks?before=16&limit=10")

	b, _ := f.server.Bookmark(5)
	assert.Equal(t, b.Title, "New")
}

func TestBookmarks_UpdateValidatesURLBeforeSending(t *testing.T) {
	f := newFixture(t, "", "")
	seedBookmarks(f, 1)

	err := f.client.UpdateBookmark(context.Background(), 1, model.BookmarkPatch{URL: stringPtr("not a url")})

	assert.Assert(t, errors.Is(err, model.ErrInvalidURL))
	assert.Equal(t, len(f.server.Requests()), 0)
}

func TestBookmarks_EmptyPatchSendsNothing(t *testing.T) {
	f := newFixture(t, "", "")

	assert.NilError(t, f.client.UpdateBookmark(context.Background(), 1, model.BookmarkPatch{}))
	assert.Equal(t, len(f.server.Requests()), 0)
}

func TestBookmarks_Delete(t *testing.T) {
	f := newFixture(t, "", "")
	seedBookmarks(f, 2)
	ctx := context.Background()

	assert.NilError(t, f.client.DeleteBookmark(ctx, 2))
	_, ok := f.server.Bookmark(2)
	assert.Assert(t, !ok)

	err := f.client.DeleteBookmark(ctx, 2)
	assert.Error(t, err, "Not Found")
}

func TestBookmarks_NotInFolderFilter(t *testing.T) {
	f := newFixture(t, "", "")
	f.server.AddFolder("/dev")
	f.server.AddBookmark("/dev", "Go", "https://go.dev")
	loose := f.server.AddBookmark("", "Loose", "https://loose.example")

	bookmarks, err := f.client.AllBookmarks(context.Background(), api.BookmarkQuery{CWD: model.NotInFolderPath("/")})
	assert.NilError(t, err)
	assert.Equal(t, len(bookmarks), 1)
	assert.Equal(t, bookmarks[0].ID, loose.ID)
}

func TestAllBookmarks(t *testing.T) {
	f := newFixture(t, "", "")
	seedBookmarks(f, 23)

	bookmarks, err := f.client.AllBookmarks(context.Background(), api.BookmarkQuery{Limit: 5})
	assert.NilError(t, err)
	assert.Equal(t, len(bookmarks), 23)
	assert.Equal(t, bookmarks[0].ID, int64(23))
}

func TestTags_PagingOmitsLimit(t *testing.T) {
	f := newFixture(t, "", "")
	for i := 0; i < 12; i++ {
		f.server.AddBookmark("", "b", "https://example.com", fmt.Sprintf("tag%02d", i))
	}
	ctx := context.Background()

	c := pager.New(api.TagsPath, f.client.FetchTags)
	c.SetQuery(api.TagQuery{})
	assert.NilError(t, c.Load(ctx))
	assert.NilError(t, c.LoadMore(ctx))

	snap := c.Snapshot()
	assert.Equal(t, len(snap.Items()), 12)
	assert.Assert(t, snap.ReachingEnd)
	requests := f.server.Requests()
	assert.Equal(t, len(requests), 2)
	for _, r := range requests {
		assert.Assert(t, !strings.Contains(r.URI, "limit="), r.URI)
	}
}
