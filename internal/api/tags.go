package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nikbrunner/bmr/internal/model"
)

// TagsPath is the tag collection endpoint.
const TagsPath = "/api/tags"

// TagQuery filters the tag list. The endpoint takes no limit parameter;
// Limit is the server's implicit page size and only decides when paging ends.
type TagQuery struct {
	Q     string
	Limit int
}

// PageSize returns the page size the server is assumed to use.
func (q TagQuery) PageSize() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Values maps q to "q".
func (q TagQuery) Values() url.Values {
	values := url.Values{}
	if q.Q != "" {
		values.Set("q", q.Q)
	}
	return values
}

// FetchTags loads one page of tags by page key.
func (c *Client) FetchTags(ctx context.Context, key string) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.DoJSON(ctx, http.MethodGet, key, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
