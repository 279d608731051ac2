package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/gemini"
	"github.com/fwojciec/dbxdocs/index"
	"github.com/fwojciec/dbxdocs/retrieval"
	dbxslog "github.com/fwojciec/dbxdocs/slog"
	"github.com/fwojciec/dbxdocs/sqlite"
	"github.com/joho/godotenv"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database paths. When empty, the --db and --index-db flags decide.
	ContentDBPath string
	IndexDBPath   string

	ContentDB *sqlite.DB
	IndexDB   *sqlite.DB

	// Embedder and Fetcher override the ones selected by flags. Used by
	// tests.
	Embedder dbxdocs.Embedder
	Fetcher  dbxdocs.Fetcher
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close closes both databases.
func (m *Main) Close() error {
	var errs []error
	if m.IndexDB != nil {
		errs = append(errs, m.IndexDB.Close())
	}
	if m.ContentDB != nil {
		errs = append(errs, m.ContentDB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Version: version,
		Fetcher: m.Fetcher,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dbxdocs"),
		kong.Description("Index Databricks documentation and serve it to LLM agents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"default_db": defaultPath("content.db"), "default_index_db": defaultPath("index.db")},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'dbxdocs --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)
	deps.Site, err = dbxdocs.NewSite(cli.BaseURL, cli.Scope, mustExcludeFilter())
	if err != nil {
		return err
	}

	if err := m.open(cli); err != nil {
		fmt.Fprintln(stderr, "Hint: set DBXDOCS_DB and DBXDOCS_INDEX_DB to use different database paths")
		return err
	}
	defer m.Close()

	deps.Documents = sqlite.NewDocumentService(m.ContentDB)
	deps.Runs = sqlite.NewCrawlRunService(m.ContentDB)
	deps.Embeddings = sqlite.NewEmbeddingService(m.IndexDB)

	if cmd != "status" && cmd != "export" {
		embedder := m.Embedder
		if embedder == nil {
			embedder, err = newEmbedder(ctx, cli)
			if err != nil {
				fmt.Fprintln(stderr, "Hint: set GEMINI_API_KEY (https://aistudio.google.com/apikey) or pass --embedder hash")
				return err
			}
		}
		embedder = dbxslog.NewLoggingEmbedder(embedder, deps.Logger)
		deps.Index = dbxslog.NewLoggingIndexer(index.NewIndexer(embedder, deps.Embeddings), deps.Logger)
		deps.Retrieval = dbxslog.NewLoggingRetrievalService(retrieval.NewService(deps.Documents, deps.Index), deps.Logger)
	}

	return kongCtx.Run(deps)
}

// open opens the content store and the vector index, creating parent
// directories as needed.
func (m *Main) open(cli *CLI) error {
	if m.ContentDBPath == "" {
		m.ContentDBPath = cli.DB
	}
	if m.IndexDBPath == "" {
		m.IndexDBPath = cli.IndexDB
	}

	for _, p := range []string{m.ContentDBPath, m.IndexDBPath} {
		if p == ":memory:" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	m.ContentDB = sqlite.NewDB(m.ContentDBPath)
	if err := m.ContentDB.Open(); err != nil {
		return fmt.Errorf("failed to open content store at %q: %w", m.ContentDBPath, err)
	}
	m.IndexDB = sqlite.NewDB(m.IndexDBPath)
	if err := m.IndexDB.Open(); err != nil {
		return fmt.Errorf("failed to open vector index at %q: %w", m.IndexDBPath, err)
	}
	return nil
}

func newEmbedder(ctx context.Context, cli *CLI) (dbxdocs.Embedder, error) {
	switch cli.Embedder {
	case "hash":
		return index.NewHashEmbedder(index.DefaultHashDimensions), nil
	default:
		client, err := gemini.NewClient(ctx, cli.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, cli.EmbeddingModel, cli.Dimensions), nil
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func mustExcludeFilter() *dbxdocs.URLFilter {
	f, err := dbxdocs.NewExcludeFilter(dbxdocs.DefaultExcludePatterns)
	if err != nil {
		panic(err)
	}
	return f
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".dbxdocs", name)
}
