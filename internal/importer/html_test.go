package importer_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/exporter"
	"github.com/nikbrunner/bmr/internal/fakeapi"
	"github.com/nikbrunner/bmr/internal/importer"
	"github.com/nikbrunner/bmr/internal/model"
	"gotest.tools/v3/assert"
)

const nestedHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890" TAGS="js, ui">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

func parse(t *testing.T, s string) importer.Document {
	t.Helper()
	doc, err := importer.ParseHTMLBookmarks(strings.NewReader(s))
	assert.NilError(t, err)
	return doc
}

func TestParseHTML_SingleBookmark(t *testing.T) {
	doc := parse(t, `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`)

	assert.Equal(t, len(doc.Folders), 0)
	assert.DeepEqual(t, doc.Bookmarks, []importer.Entry{
		{Title: "Example Site", URL: "https://example.com", Tags: []string{}},
	})
}

func TestParseHTML_NestedFolders(t *testing.T) {
	doc := parse(t, nestedHTML)

	assert.DeepEqual(t, doc.Folders, []string{"/Development", "/Development/React"})
	assert.DeepEqual(t, doc.Bookmarks, []importer.Entry{
		{Title: "React Docs", URL: "https://react.dev", Folder: "/Development/React", Tags: []string{"js", "ui"}},
		{Title: "GitHub", URL: "https://github.com", Folder: "/Development", Tags: []string{}},
		{Title: "Google", URL: "https://google.com", Tags: []string{}},
	})
}

func TestParseHTML_EmptyFile(t *testing.T) {
	doc := parse(t, `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<DL><p>
</DL><p>`)

	assert.Equal(t, len(doc.Folders), 0)
	assert.Equal(t, len(doc.Bookmarks), 0)
}

func TestParseHTML_MissingHrefAndTitle(t *testing.T) {
	doc := parse(t, `<DL><p>
    <DT><A>No link</A>
    <DT><A HREF="https://untitled.example"></A>
</DL><p>`)

	assert.Equal(t, len(doc.Bookmarks), 1)
	assert.Equal(t, doc.Bookmarks[0].Title, "https://untitled.example")
}

func TestParseHTML_SlashInFolderName(t *testing.T) {
	doc := parse(t, `<DL><p>
    <DT><H3>CI/CD</H3>
    <DL><p>
        <DT><A HREF="https://ci.example">CI</A>
    </DL><p>
</DL><p>`)

	assert.DeepEqual(t, doc.Folders, []string{"/CI-CD"})
	assert.Equal(t, doc.Bookmarks[0].Folder, "/CI-CD")
}

func TestParseHTML_ReadsExport(t *testing.T) {
	root := &exporter.Node{
		Path: model.RootPath,
		Children: []*exporter.Node{{
			Path:      "/dev",
			Bookmarks: []model.Bookmark{{ID: 1, Title: "Go", URL: "https://go.dev", Tags: []string{"lang"}}},
		}},
	}

	doc := parse(t, exporter.ExportHTML(root))

	assert.DeepEqual(t, doc.Folders, []string{"/dev"})
	assert.DeepEqual(t, doc.Bookmarks, []importer.Entry{
		{Title: "Go", URL: "https://go.dev", Folder: "/dev", Tags: []string{"lang"}},
	})
}

func TestApply(t *testing.T) {
	server := fakeapi.New("")
	server.AddFolder("/Development")
	react := server.AddBookmark("", "React", "https://react.dev")
	github := server.AddBookmark("", "GitHub", "https://github.com")
	google := server.AddBookmark("", "Google", "https://google.com")

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	client := api.New(api.Params{BaseURL: ts.URL, HTTPClient: ts.Client()})

	doc := parse(t, nestedHTML)
	doc.Bookmarks = append(doc.Bookmarks, importer.Entry{Title: "Gone", URL: "https://gone.example", Folder: "/Development"})

	sum, err := importer.Apply(context.Background(), client, doc)
	assert.NilError(t, err)

	assert.DeepEqual(t, sum, importer.Summary{
		FoldersCreated:  1,
		FoldersExisting: 1,
		Moved:           2,
		Unmatched:       1,
	})
	assert.Equal(t, server.FolderOf(react.ID), "/Development/React")
	assert.Equal(t, server.FolderOf(github.ID), "/Development")
	assert.Equal(t, server.FolderOf(google.ID), "", "top-level entries stay unfiled")
}

func TestApply_Error(t *testing.T) {
	server := fakeapi.New("")
	server.FailWith(500)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	client := api.New(api.Params{BaseURL: ts.URL, HTTPClient: ts.Client()})

	_, err := importer.Apply(context.Background(), client, parse(t, nestedHTML))
	assert.ErrorContains(t, err, "create folder /Development")
}
