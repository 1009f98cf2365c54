package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/culler"
	"github.com/nikbrunner/bmr/internal/exporter"
	"github.com/nikbrunner/bmr/internal/importer"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/picker"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tui"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// Link check settings for `bmr check`.
const (
	checkConcurrency = 10
	checkTimeout     = 10 * time.Second
)

// env bundles what every subcommand needs.
type env struct {
	cfg    *storage.Config
	creds  storage.CredentialStore
	auth   *api.AuthState
	client *api.Client
}

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "login":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: bmr login <key>\n")
				os.Exit(1)
			}
			run(false, func(rt *env) error { return runLogin(rt, os.Args[2]) })
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: bmr import <file.html>\n")
				os.Exit(1)
			}
			run(false, func(rt *env) error { return runImport(rt, os.Args[2]) })
			return
		case "logout":
			run(false, runLogout)
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			run(false, func(rt *env) error { return runExport(rt, outputPath) })
			return
		case "check":
			prune := len(os.Args) >= 3 && os.Args[2] == "--prune"
			run(false, func(rt *env) error { return runCheck(rt, prune) })
			return
		default:
			query := strings.Join(os.Args[1:], " ")
			run(false, func(rt *env) error { return runQuickSearch(rt, query) })
			return
		}
	}

	run(true, runTUI)
}

// run loads config and credentials, sets up logging and metrics, then calls fn.
// The TUI owns the terminal, so it logs to a file instead of stderr.
func run(interactive bool, fn func(*env) error) {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting config path: %v\n", err)
		os.Exit(1)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	closeLog := setupLogging(cfg, interactive)
	defer closeLog()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	creds, err := storage.OpenCredentialStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening credential store: %v\n", err)
		os.Exit(1)
	}
	if c, ok := creds.(io.Closer); ok {
		defer c.Close()
	}

	auth := api.NewAuthState()
	rt := &env{
		cfg:    cfg,
		creds:  creds,
		auth:   auth,
		client: api.NewFromConfig(cfg, creds, auth),
	}

	if err := fn(rt); err != nil {
		if api.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %s. Run `bmr login <key>` to store one.\n", auth.Reason())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		closeLog()
		os.Exit(1)
	}
}

// setupLogging points the global logger at the log file or stderr and
// returns a function that releases it.
func setupLogging(cfg *storage.Config, toFile bool) func() {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !toFile {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return func() {}
	}

	path, err := storage.DefaultLogPath()
	if err == nil {
		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			log.Logger = zerolog.New(f).With().Timestamp().Logger()
			return func() { _ = f.Close() }
		}
	}

	// Without a log file, stay quiet rather than drawing over the TUI.
	log.Logger = zerolog.Nop()
	return func() {}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

func printHelp() {
	help := `bmr - terminal client for a remote bookmark service

Usage:
  bmr                   Open interactive TUI
  bmr <query>           Search → select → open
  bmr login <key>       Store the API key
  bmr logout            Clear the stored API key
  bmr import <file>     Recreate folders from HTML and file matching bookmarks
  bmr export [path]     Export bookmarks to HTML
  bmr check [--prune]   Check bookmark URLs, optionally delete dead ones
  bmr help              Show this help

TUI Keybindings:
  Navigation:
    j/k         Move down/up
    gg/G        Jump to top/bottom
    h/l         Back / enter folder
    u           Parent folder
    Tab         Switch pane

  Folders:
    Space       Filter bookmarks by folder
    0           Bookmarks not in a folder
    /           Filter folders
    A           Add folder

  Bookmarks:
    s           Search
    o/l         Open in browser
    Y           Copy URL to clipboard
    e           Edit
    d           Delete
    m           Move
    Space/v     Select / selection mode
    n           Load more

  Other:
    Esc         Clear selection, filter or search
    r           Reload
    ?           Show help overlay
    q           Quit

Configuration:
  ~/.config/bmr/config.json
  BMR_BASE_URL, BMR_LOG_LEVEL, BMR_METRICS_ADDR, BMR_CREDENTIAL_BACKEND
`
	fmt.Print(help)
}

// runTUI runs the full interactive TUI.
func runTUI(rt *env) error {
	app := tui.NewApp(tui.AppParams{
		Client:      rt.client,
		Auth:        rt.auth,
		Credentials: rt.creds,
		PageSize:    rt.cfg.PageSize,
		TagPageSize: rt.cfg.TagPageSize,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}

// runQuickSearch asks the service for matches and opens the chosen one.
func runQuickSearch(rt *env, query string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bookmarks, err := rt.client.AllBookmarks(ctx, api.BookmarkQuery{Q: query, Limit: rt.cfg.PageSize})
	if err != nil {
		return err
	}

	if len(bookmarks) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected model.Bookmark
	if len(bookmarks) == 1 {
		selected = bookmarks[0]
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		program := tea.NewProgram(picker.New(bookmarks, query, layout.DefaultConfig()))
		finalModel, err := program.Run()
		if err != nil {
			return fmt.Errorf("running picker: %w", err)
		}

		var ok bool
		selected, ok = finalModel.(picker.Picker).SelectedBookmark()
		if !ok {
			return nil
		}
	}

	return tui.OpenURL(selected.URL)
}

func runLogin(rt *env, key string) error {
	if err := rt.creds.Save(strings.TrimSpace(key)); err != nil {
		return err
	}
	fmt.Println("API key saved")
	return nil
}

func runLogout(rt *env) error {
	if err := rt.creds.Clear(); err != nil {
		return err
	}
	fmt.Println("API key cleared")
	return nil
}

// runImport applies the folder layout of a browser export to the service.
func runImport(rt *env, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	doc, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := importer.Apply(ctx, rt.client, doc)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d folders (%d already existed), filed %d bookmarks", sum.FoldersCreated, sum.FoldersExisting, sum.Moved)
	if sum.Unmatched > 0 {
		fmt.Printf(" (%d not on the server)", sum.Unmatched)
	}
	fmt.Println()
	return nil
}

// runExport writes every bookmark, grouped by folder, to outputPath.
func runExport(rt *env, outputPath string) error {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			return fmt.Errorf("getting default export path: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, err := exporter.Collect(ctx, rt.client)
	if err != nil {
		return err
	}
	if err := exporter.WriteFile(outputPath, root); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Printf("Exported %d bookmarks to %s\n", root.Count(), outputPath)
	return nil
}

// runCheck checks every bookmark URL and reports the broken ones.
func runCheck(rt *env, prune bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bookmarks, err := rt.client.AllBookmarks(ctx, api.BookmarkQuery{Limit: rt.cfg.PageSize})
	if err != nil {
		return err
	}

	results := culler.CheckURLs(ctx, bookmarks, culler.Options{
		Concurrency:    checkConcurrency,
		Timeout:        checkTimeout,
		ExcludeDomains: []string{"github.com"},
		OnProgress: func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rChecked %d/%d", completed, total)
		},
	})
	if len(results) > 0 {
		fmt.Fprintln(os.Stderr)
	}

	dead := culler.Filter(results, culler.Dead)
	unreachable := culler.Filter(results, culler.Unreachable)

	for _, r := range dead {
		fmt.Printf("dead         %d  %s  (%d)\n", r.Bookmark.ID, r.Bookmark.URL, r.StatusCode)
	}
	for _, r := range unreachable {
		fmt.Printf("unreachable  %d  %s  (%s)\n", r.Bookmark.ID, r.Bookmark.URL, r.Error)
	}
	fmt.Printf("%d checked, %d dead, %d unreachable\n", len(results), len(dead), len(unreachable))

	if !prune || len(dead) == 0 {
		return nil
	}

	n, err := culler.Prune(ctx, rt.client, results)
	fmt.Printf("Deleted %d dead bookmarks\n", n)
	return err
}
