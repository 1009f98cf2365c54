package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Entry is a bookmark found in an export file.
type Entry struct {
	Title  string
	URL    string
	Folder string // folder path, "" when the bookmark sits at the top level
	Tags   []string
}

// Document is the folder tree and bookmarks of an export file.
// Folders are listed parents first.
type Document struct {
	Folders   []string
	Bookmarks []Entry
}

// ParseHTMLBookmarks parses Netscape bookmark HTML.
func ParseHTMLBookmarks(r io.Reader) (Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Document{}, err
	}

	var out Document
	seen := make(map[string]bool)

	var folderStack []string // paths; empty = root
	pendingFolder := ""      // folder waiting to be pushed on next DL

	current := func() string {
		if len(folderStack) == 0 {
			return ""
		}
		return folderStack[len(folderStack)-1]
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := folderName(getTextContent(n))
				if name != "" {
					path := model.JoinPath(current(), name)
					if !seen[path] {
						seen[path] = true
						out.Folders = append(out.Folders, path)
					}
					pendingFolder = path
				}
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				out.Bookmarks = append(out.Bookmarks, Entry{
					Title:  title,
					URL:    href,
					Folder: current(),
					Tags:   model.ParseTags(getAttr(n, "tags")),
				})
				return // Don't recurse into A

			case "dl":
				// A DL right after an H3 holds that folder's contents.
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return out, nil
}

// folderName makes a folder title usable as one path segment.
func folderName(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "/", "-"))
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

// Target is the part of the API client an import writes to.
type Target interface {
	CreateFolder(ctx context.Context, path string) error
	ListFolders(ctx context.Context, cwd string) ([]model.Folder, error)
	AllBookmarks(ctx context.Context, q api.BookmarkQuery) ([]model.Bookmark, error)
	MoveIn(ctx context.Context, bookmarkID, folderID int64) error
}

// Summary reports what an import changed.
type Summary struct {
	FoldersCreated  int
	FoldersExisting int
	Moved           int
	// Unmatched counts filed entries whose URL is not on the service.
	Unmatched int
}

// Apply recreates the document's folders on the service and files every
// service bookmark whose URL appears in the document into the matching
// folder. The service cannot create bookmarks, so entries without a match
// are only counted.
func Apply(ctx context.Context, t Target, doc Document) (Summary, error) {
	var sum Summary

	for _, path := range doc.Folders {
		err := t.CreateFolder(ctx, path)
		switch {
		case err == nil:
			sum.FoldersCreated++
		case api.IsStatus(err, http.StatusConflict):
			sum.FoldersExisting++
		default:
			return sum, fmt.Errorf("create folder %s: %w", path, err)
		}
	}

	folderIDs := make(map[string]int64)
	if err := collectFolders(ctx, t, "", folderIDs); err != nil {
		return sum, err
	}

	existing, err := t.AllBookmarks(ctx, api.BookmarkQuery{})
	if err != nil {
		return sum, fmt.Errorf("list bookmarks: %w", err)
	}
	byURL := make(map[string][]int64)
	for _, b := range existing {
		byURL[b.URL] = append(byURL[b.URL], b.ID)
	}

	for _, e := range doc.Bookmarks {
		if e.Folder == "" {
			continue
		}
		ids, ok := byURL[e.URL]
		folderID, known := folderIDs[e.Folder]
		if !ok || !known {
			sum.Unmatched++
			continue
		}
		for _, id := range ids {
			if err := t.MoveIn(ctx, id, folderID); err != nil {
				return sum, fmt.Errorf("move %d into %s: %w", id, e.Folder, err)
			}
			log.Debug().Int64("id", id).Str("folder", e.Folder).Msg("filed imported bookmark")
			sum.Moved++
		}
	}

	return sum, nil
}

func collectFolders(ctx context.Context, t Target, cwd string, out map[string]int64) error {
	folders, err := t.ListFolders(ctx, cwd)
	if err != nil {
		return fmt.Errorf("list folders in %s: %w", model.NormalizeCWD(cwd), err)
	}
	for _, f := range folders {
		out[f.Path] = f.ID
		if err := collectFolders(ctx, t, f.Path, out); err != nil {
			return err
		}
	}
	return nil
}
