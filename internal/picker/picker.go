package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Picker lets the user choose one bookmark from server search results,
// optionally narrowing them further by fuzzy title match.
type Picker struct {
	bookmarks []model.Bookmark
	results   []search.SearchResult
	query     string
	filter    textinput.Model
	filtering bool
	cursor    int
	selected  bool
	cancelled bool
	cfg       layout.LayoutConfig
	width     int
	height    int
}

// New creates a Picker over the bookmarks returned for query.
func New(bookmarks []model.Bookmark, query string, cfg layout.LayoutConfig) Picker {
	filter := textinput.New()
	filter.Placeholder = "narrow by title"
	filter.CharLimit = cfg.Input.FilterCharLimit
	filter.Width = cfg.Input.FilterWidth
	filter.Cursor.SetMode(cursor.CursorStatic)

	p := Picker{
		bookmarks: bookmarks,
		query:     query,
		filter:    filter,
		cfg:       cfg,
		width:     80,
		height:    24,
	}
	p.refresh()
	return p
}

// refresh recomputes the visible results from the filter text.
func (p *Picker) refresh() {
	pattern := strings.TrimSpace(p.filter.Value())
	if pattern == "" {
		p.results = make([]search.SearchResult, len(p.bookmarks))
		for i, b := range p.bookmarks {
			p.results[i] = search.SearchResult{Bookmark: b}
		}
	} else {
		p.results = search.FuzzySearchBookmarks(p.bookmarks, pattern)
	}
	if p.cursor >= len(p.results) {
		p.cursor = max(len(p.results)-1, 0)
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		if p.filtering {
			return p.updateFilter(msg)
		}

		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if len(p.results) == 0 {
				return p, nil
			}
			p.selected = true
			return p, tea.Quit

		case tea.KeyDown:
			p.moveDown()
			return p, nil

		case tea.KeyUp:
			p.moveUp()
			return p, nil
		}

		// Handle j/k vim keys
		if msg.Type == tea.KeyRunes {
			switch string(msg.Runes) {
			case "j":
				p.moveDown()
			case "k":
				p.moveUp()
			case "/":
				p.filtering = true
				p.filter.Focus()
			case "q":
				p.cancelled = true
				return p, tea.Quit
			}
		}
	}

	return p, nil
}

func (p Picker) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		p.cancelled = true
		return p, tea.Quit

	case tea.KeyEsc:
		p.filtering = false
		p.filter.Blur()
		p.filter.Reset()
		p.refresh()
		return p, nil

	case tea.KeyEnter:
		p.filtering = false
		p.filter.Blur()
		return p, nil

	case tea.KeyDown:
		p.moveDown()
		return p, nil

	case tea.KeyUp:
		p.moveUp()
		return p, nil
	}

	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	p.cursor = 0
	p.refresh()
	return p, cmd
}

func (p *Picker) moveDown() {
	if p.cursor < len(p.results)-1 {
		p.cursor++
	}
}

func (p *Picker) moveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n")
	if p.filtering || p.filter.Value() != "" {
		b.WriteString("/" + p.filter.View())
	}
	b.WriteString("\n\n")

	dims := layout.CalculatePickerLayout(p.width, p.height, p.cfg.Picker)
	list := p.renderList(dims.ListWidth, dims.ListHeight)
	preview := p.renderPreview(dims.PreviewWidth)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(dims.ListWidth).Render(list),
		"  ",
		lipgloss.NewStyle().Width(dims.PreviewWidth).Render(preview),
	))

	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("j/k: move  /: narrow  Enter: open  q/Esc: cancel"))

	return b.String()
}

func (p Picker) renderList(width, height int) string {
	if len(p.results) == 0 {
		return footerStyle.Render("(no matches)")
	}

	itemWidth := width - 2
	offset := layout.CalculateViewportOffset(p.cursor, len(p.results), height)
	var lines []string
	for i := offset; i < len(p.results) && i < offset+height; i++ {
		r := p.results[i]
		prefix := "  "
		style := normalStyle
		if i == p.cursor {
			prefix = "> "
			style = selectedStyle
		}

		var title string
		if len(r.MatchedIndexes) > 0 {
			title, _ = layout.Truncate(highlight(r.Bookmark.Title, r.MatchedIndexes, style), itemWidth, p.cfg.Text)
		} else {
			t, _ := layout.Truncate(r.Bookmark.Title, itemWidth, p.cfg.Text)
			title = style.Render(t)
		}
		lines = append(lines, prefix+title)
	}
	return strings.Join(lines, "\n")
}

func (p Picker) renderPreview(width int) string {
	b, ok := p.current()
	if !ok {
		return ""
	}

	url, _ := layout.Truncate(b.URL, width, p.cfg.Text)
	lines := []string{selectedStyle.Render(b.Title), urlStyle.Render(url)}
	if len(b.Tags) > 0 {
		tags := make([]string, len(b.Tags))
		for i, t := range b.Tags {
			tags[i] = "#" + t
		}
		lines = append(lines, tagStyle.Render(strings.Join(tags, " ")))
	}
	return strings.Join(lines, "\n")
}

func highlight(text string, matched []int, base lipgloss.Style) string {
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(text) {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (p Picker) current() (model.Bookmark, bool) {
	if p.cursor < 0 || p.cursor >= len(p.results) {
		return model.Bookmark{}, false
	}
	return p.results[p.cursor].Bookmark, true
}

// SelectedBookmark returns the chosen bookmark. ok is false when the
// picker was cancelled or nothing was chosen.
func (p Picker) SelectedBookmark() (b model.Bookmark, ok bool) {
	if p.cancelled || !p.selected {
		return model.Bookmark{}, false
	}
	return p.current()
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
