package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/nav"
	"github.com/nikbrunner/bmr/internal/pager"
	"github.com/nikbrunner/bmr/internal/search"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeSearch
	ModeEditBookmark
	ModeConfirmDelete
	ModeAddFolder
	ModeMove
	ModeHelp
	ModeCredential
)

// MessageType determines how the status message is styled.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// App is the main bubbletea model for the bookmark browser.
type App struct {
	client      *api.Client
	auth        *api.AuthState
	authChanges <-chan struct{}
	creds       storage.CredentialStore

	bookmarks *pager.Collection[model.Bookmark]
	tags      *pager.Collection[model.Tag]
	nav       *nav.Navigator

	pageSize    int
	tagPageSize int

	// Folder listings per working path
	folders        map[string][]model.Folder
	folderErrs     map[string]error
	loadingFolders map[string]bool
	byPath         map[string]model.Folder

	focus          Pane
	folderCursor   int
	bookmarkCursor int
	mode           Mode

	search     SearchState
	modal      ModalState
	move       MoveState
	credential CredentialForm

	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	openURL  func(string) error
	copyText func(string) error

	messageText string
	messageType MessageType

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Client       *api.Client
	Auth         *api.AuthState
	Credentials  storage.CredentialStore
	PageSize     int                  // optional, defaults to api.DefaultLimit
	TagPageSize  int                  // optional, defaults to api.DefaultLimit
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	OpenURL      func(string) error   // optional, opens the system browser if nil
	CopyText     func(string) error   // optional, uses the system clipboard if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	auth := params.Auth
	if auth == nil {
		auth = api.NewAuthState()
	}

	// One subscription for the lifetime of the app; watchAuth re-arms on it.
	authChanges, _ := auth.Subscribe()

	app := App{
		client:         params.Client,
		auth:           auth,
		authChanges:    authChanges,
		creds:          params.Credentials,
		nav:            nav.New(),
		pageSize:       orDefault(params.PageSize, api.DefaultLimit),
		tagPageSize:    orDefault(params.TagPageSize, api.DefaultLimit),
		folders:        make(map[string][]model.Folder),
		folderErrs:     make(map[string]error),
		loadingFolders: make(map[string]bool),
		byPath:         make(map[string]model.Folder),
		focus:          PaneFolders,
		mode:           ModeNormal,
		search:         NewSearchState(layoutConfig),
		modal:          NewModalState(layoutConfig),
		credential:     NewCredentialForm(layoutConfig),
		keys:           keys,
		styles:         styles,
		layoutConfig:   layoutConfig,
		openURL:        params.OpenURL,
		copyText:       params.CopyText,
		width:          80,
		height:         24,
	}
	if app.openURL == nil {
		app.openURL = OpenURL
	}
	if app.copyText == nil {
		app.copyText = CopyText
	}

	app.bookmarks = pager.New(api.BookmarksPath, params.Client.FetchBookmarks)
	app.tags = pager.New(api.TagsPath, params.Client.FetchTags)
	app.bookmarks.SetQuery(app.bookmarkQuery())

	if auth.Required() {
		app.enterCredentialMode()
	}
	return app
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Focus returns the focused pane.
func (a App) Focus() Pane {
	return a.focus
}

// FolderCursor returns the cursor position in the folder pane.
func (a App) FolderCursor() int {
	return a.folderCursor
}

// BookmarkCursor returns the cursor position in the bookmark pane.
func (a App) BookmarkCursor() int {
	return a.bookmarkCursor
}

// Navigator returns the folder navigation state.
func (a App) Navigator() *nav.Navigator {
	return a.nav
}

// Query returns the active bookmark search query.
func (a App) Query() string {
	return a.search.Query
}

// Message returns the current status message.
func (a App) Message() string {
	return a.messageText
}

// FieldError returns the validation problem shown in the open form.
func (a App) FieldError() string {
	return a.modal.FieldError
}

// TagSuggestions returns the tag completions offered in the editor.
func (a App) TagSuggestions() []string {
	return a.modal.TagSuggestions
}

// Bookmarks returns the bookmarks loaded for the current filter.
func (a App) Bookmarks() []model.Bookmark {
	return a.bookmarks.Snapshot().Items()
}

// BookmarkState returns the pagination state of the bookmark list.
func (a App) BookmarkState() pager.Snapshot[model.Bookmark] {
	return a.bookmarks.Snapshot()
}

// FolderRows returns the rows of the folder pane.
func (a App) FolderRows() []FolderRow {
	return a.folderRows(a.nav.WorkingPath(), a.nav.Search(), true)
}

// MoveRows returns the rows of the move destination chooser.
func (a App) MoveRows() []FolderRow {
	if a.move.Nav == nil {
		return nil
	}
	return a.folderRows(a.move.Nav.WorkingPath(), "", false)
}

// MoveDestination returns the folder chosen in the move dialog.
func (a App) MoveDestination() string {
	if a.move.Nav == nil {
		return ""
	}
	return a.move.Destination()
}

// WithDimensions returns a copy of the App with the given window size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.Load(), a.watchAuth())
}

// Load fetches the folder listing and the first bookmark page.
func (a App) Load() tea.Cmd {
	return tea.Batch(
		a.loadFolders(a.nav.WorkingPath()),
		a.loadBookmarks(a.bookmarks.Load),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case foldersLoadedMsg:
		return a.handleFoldersLoaded(msg)

	case bookmarksLoadedMsg:
		return a.handleBookmarksLoaded(msg)

	case tagsLoadedMsg:
		a.updateTagSuggestions()
		return a.checkAuth(), nil

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case authChangedMsg:
		return a.checkAuth(), a.watchAuth()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// folderRows lists the folders of cwd narrowed by pattern, followed by the
// not-in-folder entry when withNotInFolder is set and nothing is filtered.
func (a App) folderRows(cwd, pattern string, withNotInFolder bool) []FolderRow {
	folders := a.folders[cwd]
	results := search.FilterFolders(folders, pattern)

	rows := make([]FolderRow, 0, len(results)+1)
	for _, r := range results {
		rows = append(rows, FolderRow{Kind: RowFolder, Folder: r.Folder, MatchedIndexes: r.MatchedIndexes})
	}
	if withNotInFolder && len(folders) > 0 && pattern == "" {
		rows = append(rows, FolderRow{Kind: RowNotInFolder})
	}
	return rows
}

// bookmarkQuery describes the bookmark list for the current state.
func (a App) bookmarkQuery() api.BookmarkQuery {
	return api.BookmarkQuery{
		Q:     a.search.Query,
		Limit: a.pageSize,
		CWD:   a.nav.SelectedFilter(),
	}
}

// applyBookmarkQuery switches the bookmark list to the current filter.
func (a *App) applyBookmarkQuery() tea.Cmd {
	a.bookmarkCursor = 0
	a.bookmarks.SetQuery(a.bookmarkQuery())
	return a.loadBookmarks(a.bookmarks.Refresh)
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageType = MessageInfo
}

// checkAuth swaps to the API key prompt once authentication is required.
func (a App) checkAuth() App {
	if a.auth.Required() && a.mode != ModeCredential {
		a.enterCredentialMode()
	}
	return a
}

func (a *App) enterCredentialMode() {
	a.mode = ModeCredential
	a.nav.ClearSelection()
	a.credential.Input.Reset()
	a.credential.Input.Focus()
}

// Messages produced by commands.

type foldersLoadedMsg struct {
	cwd     string
	folders []model.Folder
	err     error
}

type bookmarksLoadedMsg struct {
	err error
}

type tagsLoadedMsg struct {
	err error
}

type mutationDoneMsg struct {
	action    string // what was attempted, for errors
	done      string // what happened, for the status line
	count     int
	folderCWD string // listing to reload, if any
	err       error
}

type authChangedMsg struct{}

func (a App) loadFolders(cwd string) tea.Cmd {
	client := a.client
	a.loadingFolders[cwd] = true
	return func() tea.Msg {
		folders, err := client.ListFolders(context.Background(), cwd)
		return foldersLoadedMsg{cwd: cwd, folders: folders, err: err}
	}
}

func (a App) loadBookmarks(load func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return bookmarksLoadedMsg{err: load(context.Background())}
	}
}

func (a App) loadTags(load func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return tagsLoadedMsg{err: load(context.Background())}
	}
}

// mutate runs fn for every id and reports the first failure.
func (a App) mutate(action, done, folderCWD string, ids []int64, fn func(ctx context.Context, id int64) error) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		n := 0
		for _, id := range ids {
			if err := fn(ctx, id); err != nil {
				return mutationDoneMsg{action: action, done: done, count: n, folderCWD: folderCWD, err: err}
			}
			n++
		}
		return mutationDoneMsg{action: action, done: done, count: n, folderCWD: folderCWD}
	}
}

// watchAuth waits for the next change of the auth state.
func (a App) watchAuth() tea.Cmd {
	changes := a.authChanges
	return func() tea.Msg {
		<-changes
		return authChangedMsg{}
	}
}
