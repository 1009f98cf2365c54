package tui_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/tui"
	"github.com/nikbrunner/bmr/internal/tui/layout"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"
)

// render returns the plain text of the current view.
func render(app tui.App, width, height int) string {
	return layout.StripANSI(app.WithDimensions(width, height).View())
}

func TestView_NormalMode_80x24(t *testing.T) {
	h := newHarness(t, "", "")
	seedTree(h)
	app := h.start(t)

	golden.Assert(t, render(app, 80, 24), "golden/normal_mode_80x24.golden")
}

func TestView_CredentialPrompt_80x24(t *testing.T) {
	h := newHarness(t, "secret", "")
	app := h.start(t)

	golden.Assert(t, render(app, 80, 24), "golden/credential_80x24.golden")
}

func TestView_NormalMode(t *testing.T) {
	h := newHarness(t, "", "")
	seedTree(h)
	app := h.start(t)

	for _, size := range [][2]int{{80, 24}, {120, 30}} {
		out := render(app, size[0], size[1])

		assert.Check(t, is.Contains(out, "Folders"))
		assert.Check(t, is.Contains(out, "dev/"))
		assert.Check(t, is.Contains(out, "tools/"))
		assert.Check(t, is.Contains(out, "Not in folder"))
		assert.Check(t, is.Contains(out, "Bookmarks"))
		assert.Check(t, is.Contains(out, "Unfiled"))
		assert.Check(t, is.Contains(out, "4 total"))
		assert.Check(t, is.Contains(out, "[cwd:/]"))

		lines := strings.Split(out, "\n")
		assert.Check(t, len(lines) <= size[1], "view fits %dx%d", size[0], size[1])
		for _, line := range lines {
			assert.Check(t, layout.CellWidth(line) <= size[0], "line wider than %d: %q", size[0], line)
		}
	}
}

func TestView_EmptyState(t *testing.T) {
	h := newHarness(t, "", "")
	app := h.start(t)

	out := render(app, 80, 24)
	assert.Check(t, is.Contains(out, "(no folders)"))
	assert.Check(t, is.Contains(out, "(no bookmarks)"))
}

func TestView_PreviewShowsURLAndTags(t *testing.T) {
	h := newHarness(t, "", "")
	h.server.AddBookmark("", "Go", "https://go.dev", "lang", "docs")
	app := send(t, h.start(t), tab)

	out := render(app, 100, 24)
	assert.Check(t, is.Contains(out, "https://go.dev"))
	assert.Check(t, is.Contains(out, "#lang #docs"))
}

func TestView_BreadcrumbShowsFilter(t *testing.T) {
	h := newHarness(t, "", "")
	seedTree(h)
	app := send(t, h.start(t), press("l"), press("0"))

	out := render(app, 100, 24)
	assert.Check(t, is.Contains(out, "/dev  > not in folder"))
	assert.Check(t, is.Contains(out, "[cwd:not in folder]"))
}

func TestView_SelectionMarkers(t *testing.T) {
	h := newHarness(t, "", "")
	h.server.AddBookmark("", "A", "https://a.example")
	h.server.AddBookmark("", "B", "https://b.example")
	app := send(t, h.start(t), tab, space)

	out := render(app, 100, 24)
	assert.Check(t, is.Contains(out, "[x] B"))
	assert.Check(t, is.Contains(out, "[ ] A"))
	assert.Check(t, is.Contains(out, "[sel:1]"))
}

func TestView_FilterInput(t *testing.T) {
	h := newHarness(t, "", "")
	seedTree(h)
	app := send(t, h.start(t), press("/"))
	app = send(t, app, typed("too")...)

	out := render(app, 100, 24)
	assert.Check(t, is.Contains(out, "/too"))
	assert.Check(t, !strings.Contains(out, "dev/"))
}

func TestView_EditModal(t *testing.T) {
	h := newHarness(t, "", "")
	h.server.AddBookmark("", "Go", "https://go.dev", "lang")
	app := send(t, h.start(t), tab, press("e"))

	out := render(app, 100, 30)
	assert.Check(t, is.Contains(out, "Edit Bookmark"))
	assert.Check(t, is.Contains(out, "Title:"))
	assert.Check(t, is.Contains(out, "URL:"))
	assert.Check(t, is.Contains(out, "Tags (comma-separated):"))
	assert.Check(t, is.Contains(out, "Enter"))
}

func TestView_ConfirmDeleteModal(t *testing.T) {
	h := newHarness(t, "", "")
	h.server.AddBookmark("", "Go", "https://go.dev")
	app := send(t, h.start(t), tab, press("d"))

	out := render(app, 100, 30)
	assert.Check(t, is.Contains(out, "Delete Bookmark?"))
	assert.Check(t, is.Contains(out, `"Go"`))
	assert.Check(t, is.Contains(out, "This action cannot be undone."))
}

func TestView_MoveModal(t *testing.T) {
	h := newHarness(t, "", "")
	seedTree(h)
	app := send(t, h.start(t), tab, press("m"))

	out := render(app, 100, 30)
	assert.Check(t, is.Contains(out, "Move 1 bookmark(s)"))
	assert.Check(t, is.Contains(out, "To: (no folder)"))
	assert.Check(t, is.Contains(out, "dev/"))
	assert.Check(t, is.Contains(out, "tools/"))
}

func TestView_CredentialPrompt(t *testing.T) {
	h := newHarness(t, "secret", "")
	app := h.start(t)

	out := render(app, 100, 30)
	assert.Check(t, is.Contains(out, "API Key"))
	assert.Check(t, is.Contains(out, api.ReasonKeyRequired))

	app = send(t, app, typed("hunter2")...)
	out = render(app, 100, 30)
	assert.Check(t, !strings.Contains(out, "hunter2"), "key input is masked")
}

func TestView_HelpOverlay(t *testing.T) {
	h := newHarness(t, "", "")
	app := send(t, h.start(t), press("?"))

	out := render(app, 100, 40)
	assert.Check(t, is.Contains(out, "folders"))
	assert.Check(t, is.Contains(out, "bookmarks"))
	assert.Check(t, is.Contains(out, "load more"))
}

func TestView_ErrorMessage(t *testing.T) {
	h := newHarness(t, "", "")
	h.server.AddBookmark("", "Go", "https://go.dev")
	app := h.start(t)

	h.server.FailWith(500)
	app = send(t, app, press("r"))

	out := render(app, 100, 24)
	assert.Check(t, is.Contains(out, "✗ Failed to load bookmarks"))
}
