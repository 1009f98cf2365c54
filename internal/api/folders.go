package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikbrunner/bmr/internal/model"
)

// FoldersPath is the folder endpoint.
const FoldersPath = "/api/folders"

type createFolderRequest struct {
	Path string `json:"path"`
}

// ListFolders returns the direct children of cwd. An empty cwd lists the root.
// The listing is not paginated.
func (c *Client) ListFolders(ctx context.Context, cwd string) ([]model.Folder, error) {
	path := FoldersPath
	if cwd != "" {
		path += "?" + url.Values{"cwd": {cwd}}.Encode()
	}

	var folders []model.Folder
	if err := c.DoJSON(ctx, http.MethodGet, path, nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// CreateFolder creates a folder at path. The service rejects existing paths.
func (c *Client) CreateFolder(ctx context.Context, path string) error {
	return c.Exec(ctx, http.MethodPost, FoldersPath, createFolderRequest{Path: path})
}

// MoveIn assigns a bookmark to a folder.
func (c *Client) MoveIn(ctx context.Context, bookmarkID, folderID int64) error {
	return c.Exec(ctx, http.MethodPut, fmt.Sprintf("%s/move_in/%d/%d", FoldersPath, bookmarkID, folderID), nil)
}

// MoveOut clears a bookmark's folder assignment.
func (c *Client) MoveOut(ctx context.Context, bookmarkID int64) error {
	return c.Exec(ctx, http.MethodPut, fmt.Sprintf("%s/move_out/%d", FoldersPath, bookmarkID), nil)
}
