package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tui/layout"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func testBookmarks() []model.Bookmark {
	return []model.Bookmark{
		{ID: 1, Title: "GitHub", URL: "https://github.com", Tags: []string{"code"}},
		{ID: 2, Title: "GitLab", URL: "https://gitlab.com"},
		{ID: 3, Title: "Gitea", URL: "https://gitea.io"},
	}
}

func newPicker() Picker {
	return New(testBookmarks(), "git", layout.DefaultConfig())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, p Picker, msgs ...tea.Msg) Picker {
	t.Helper()
	for _, msg := range msgs {
		m, _ := p.Update(msg)
		p = m.(Picker)
	}
	return p
}

func titles(p Picker) []string {
	var out []string
	for _, r := range p.results {
		out = append(out, r.Bookmark.Title)
	}
	return out
}

func TestPicker_InitialState(t *testing.T) {
	p := newPicker()

	assert.Equal(t, p.cursor, 0)
	assert.DeepEqual(t, titles(p), []string{"GitHub", "GitLab", "Gitea"})
}

func TestPicker_Navigate(t *testing.T) {
	p := newPicker()

	p = update(t, p, runes("j"))
	assert.Equal(t, p.cursor, 1)

	p = update(t, p, tea.KeyMsg{Type: tea.KeyDown}, runes("j"))
	assert.Equal(t, p.cursor, 2, "cursor stops at the last result")

	p = update(t, p, runes("k"), tea.KeyMsg{Type: tea.KeyUp}, runes("k"))
	assert.Equal(t, p.cursor, 0, "cursor stops at the first result")
}

func TestPicker_Select(t *testing.T) {
	p := newPicker()
	m, cmd := update(t, p, runes("j")).Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = m.(Picker)

	assert.Assert(t, cmd != nil, "enter quits")
	b, ok := p.SelectedBookmark()
	assert.Assert(t, ok)
	assert.Equal(t, b.ID, int64(2))
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		p := update(t, newPicker(), msg)

		assert.Check(t, p.Cancelled(), "key %q", msg.String())
		_, ok := p.SelectedBookmark()
		assert.Check(t, !ok)
	}
}

func TestPicker_NoSelectionBeforeEnter(t *testing.T) {
	_, ok := newPicker().SelectedBookmark()
	assert.Check(t, !ok)
}

func TestPicker_EmptyResults(t *testing.T) {
	p := New(nil, "nothing", layout.DefaultConfig())
	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnter})

	_, ok := p.SelectedBookmark()
	assert.Check(t, !ok)
	assert.Check(t, !p.Cancelled())
	assert.Check(t, is.Contains(layout.StripANSI(p.View()), "(no matches)"))
}

func TestPicker_Narrow(t *testing.T) {
	p := update(t, newPicker(), runes("/"), runes("l"), runes("a"), runes("b"))

	assert.Check(t, p.filtering)
	assert.DeepEqual(t, titles(p), []string{"GitLab"})

	// j is text while narrowing
	p = update(t, p, runes("j"))
	assert.Equal(t, p.filter.Value(), "labj")
	assert.Equal(t, len(p.results), 0)

	p = update(t, p, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Check(t, !p.filtering)
	assert.DeepEqual(t, titles(p), []string{"GitLab"})

	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	b, ok := p.SelectedBookmark()
	assert.Assert(t, ok)
	assert.Equal(t, b.Title, "GitLab")
}

func TestPicker_NarrowEscRestoresAll(t *testing.T) {
	p := update(t, newPicker(), runes("/"), runes("t"), runes("e"), runes("a"))
	assert.DeepEqual(t, titles(p), []string{"Gitea"})

	p = update(t, p, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Check(t, !p.filtering)
	assert.Check(t, !p.Cancelled(), "esc leaves narrowing without cancelling")
	assert.DeepEqual(t, titles(p), []string{"GitHub", "GitLab", "Gitea"})
}

func TestPicker_View(t *testing.T) {
	p := update(t, newPicker(), tea.WindowSizeMsg{Width: 120, Height: 30})
	out := layout.StripANSI(p.View())

	assert.Check(t, is.Contains(out, "Search: git (3 results)"))
	assert.Check(t, is.Contains(out, "> GitHub"))
	assert.Check(t, is.Contains(out, "https://github.com"))
	assert.Check(t, is.Contains(out, "#code"))
	assert.Check(t, !strings.Contains(out, "https://gitlab.com"), "preview shows only the current bookmark")
}
