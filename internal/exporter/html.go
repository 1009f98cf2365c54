package exporter

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds the per-folder bookmark listings in flight.
const fetchConcurrency = 4

// Source is the part of the API client the exporter reads from.
type Source interface {
	ListFolders(ctx context.Context, cwd string) ([]model.Folder, error)
	AllBookmarks(ctx context.Context, q api.BookmarkQuery) ([]model.Bookmark, error)
}

// Node is a folder together with its subfolders and the bookmarks filed
// directly in it. The root node has path "/".
type Node struct {
	Path      string
	Children  []*Node
	Bookmarks []model.Bookmark
}

// Name returns the folder's leaf name.
func (n *Node) Name() string {
	return model.LeafName(n.Path)
}

// Count returns the number of bookmarks in the subtree.
func (n *Node) Count() int {
	total := len(n.Bookmarks)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// Collect fetches the whole folder tree and files every bookmark under the
// deepest folder that lists it.
func Collect(ctx context.Context, src Source) (*Node, error) {
	root := &Node{Path: model.RootPath}
	var nodes []*Node
	if err := walkFolders(ctx, src, root, "", &nodes); err != nil {
		return nil, err
	}

	listed := make([][]model.Bookmark, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, n := range nodes {
		g.Go(func() error {
			bookmarks, err := src.AllBookmarks(gctx, api.BookmarkQuery{CWD: n.Path})
			if err != nil {
				return fmt.Errorf("list %s: %w", n.Path, err)
			}
			listed[i] = bookmarks
			return nil
		})
	}

	var unfiled []model.Bookmark
	g.Go(func() error {
		bookmarks, err := src.AllBookmarks(gctx, api.BookmarkQuery{CWD: model.NotInFolderPath(model.RootPath)})
		if err != nil {
			return fmt.Errorf("list unfiled: %w", err)
		}
		unfiled = bookmarks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// nodes is in pre-order, so walking it backwards visits children
	// before their parents.
	filed := make(map[int64]bool)
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, b := range listed[i] {
			if filed[b.ID] {
				continue
			}
			filed[b.ID] = true
			nodes[i].Bookmarks = append(nodes[i].Bookmarks, b)
		}
	}
	root.Bookmarks = unfiled

	return root, nil
}

func walkFolders(ctx context.Context, src Source, parent *Node, cwd string, out *[]*Node) error {
	folders, err := src.ListFolders(ctx, cwd)
	if err != nil {
		return fmt.Errorf("list folders in %s: %w", model.NormalizeCWD(cwd), err)
	}
	for _, f := range folders {
		child := &Node{Path: f.Path}
		parent.Children = append(parent.Children, child)
		*out = append(*out, child)
		if err := walkFolders(ctx, src, child, f.Path, out); err != nil {
			return err
		}
	}
	return nil
}

// ExportHTML renders the tree in Netscape bookmark HTML format.
func ExportHTML(root *Node) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	if root != nil {
		writeItems(&b, root, 1)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes the subfolders and bookmarks of n.
func writeItems(b *strings.Builder, n *Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, child := range n.Children {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(child.Name()))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, child, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range n.Bookmarks {
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"", prefix, html.EscapeString(bookmark.URL))
		if len(bookmark.Tags) > 0 {
			fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bookmark.Tags, ",")))
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bookmark.Title))
	}
}

// WriteFile renders the tree and writes it to path, creating parent
// directories as needed.
func WriteFile(path string, root *Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ExportHTML(root)), 0o644)
}
