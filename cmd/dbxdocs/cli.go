package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Version string

	Site       *dbxdocs.Site
	Documents  dbxdocs.DocumentService
	Embeddings dbxdocs.EmbeddingService
	Runs       dbxdocs.CrawlRunService
	Index      dbxdocs.Indexer
	Retrieval  dbxdocs.RetrievalService

	// Fetcher replaces the HTTP fetcher for crawls. Used by tests.
	Fetcher dbxdocs.Fetcher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"DBXDOCS_DB" default:"${default_db}" help:"Content store database path"`
	IndexDB string `name:"index-db" env:"DBXDOCS_INDEX_DB" default:"${default_index_db}" help:"Vector index database path"`

	BaseURL string `name:"base-url" env:"DBXDOCS_BASE_URL" default:"https://docs.databricks.com" help:"Documentation site"`
	Scope   string `env:"DBXDOCS_SCOPE" default:"/aws/en/" help:"Path prefix that defines the corpus"`

	Embedder       string `env:"DBXDOCS_EMBEDDER" enum:"gemini,hash" default:"gemini" help:"Embedding backend (gemini, hash)"`
	EmbeddingModel string `name:"embedding-model" env:"DBXDOCS_EMBEDDING_MODEL" default:"gemini-embedding-001" help:"Gemini embedding model"`
	Dimensions     int    `env:"DBXDOCS_DIMENSIONS" default:"768" help:"Embedding dimensions"`
	GeminiAPIKey   string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`

	Verbose bool `short:"v" help:"Log every request"`

	Crawl    CrawlCmd    `cmd:"" help:"Fetch, store and index documentation pages"`
	Serve    ServeCmd    `cmd:"" help:"Serve list_sections and get_documentation over MCP stdio"`
	Sections SectionsCmd `cmd:"" help:"List documentation sections"`
	Docs     DocsCmd     `cmd:"" help:"Print documentation pages by path"`
	Status   StatusCmd   `cmd:"" help:"Show store counts and recent crawl runs"`
	Export   ExportCmd   `cmd:"" help:"Write stored pages as markdown files"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Limit     int           `short:"n" help:"Maximum number of pages to fetch (0 means no cap)"`
	NewOnly   bool          `name:"new-only" xor:"mode" help:"Only fetch pages that were never stored"`
	Full      bool          `xor:"mode" help:"Refetch every reachable page"`
	FreshFor  time.Duration `name:"fresh-for" default:"168h" help:"Age after which an incremental crawl refetches a page"`
	Render    string        `enum:"never,auto,always" default:"never" help:"Render pages in headless Chrome (never, auto, always)"`
	Extractor string        `enum:"trafilatura,readability" default:"trafilatura" help:"Fallback content extractor"`
	Root      []string      `name:"root" help:"Path to start from (repeatable, defaults to the scope)"`
	Sitemap   string        `help:"Sitemap URL or site root used to seed the crawl"`
	NoPrune   bool          `name:"no-prune" help:"Keep stored pages that were not reached"`
	Rate      float64       `default:"1" help:"Requests per second"`
	Retries   int           `default:"2" help:"Retries for transient fetch failures"`
	Tokens    bool          `name:"count-tokens" help:"Report token totals for changed pages"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct{}

// SectionsCmd is the "sections" subcommand.
type SectionsCmd struct {
	Category string `short:"c" help:"Only list this category"`
	Query    string `short:"q" help:"Rank sections by similarity to a query"`
	Limit    int    `short:"n" help:"Maximum number of sections (default 50)"`
	JSON     bool   `name:"json" help:"Print JSON"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Paths   []string `arg:"" name:"path" help:"Document paths"`
	Related bool     `short:"r" help:"Include related paths"`
	JSON    bool     `name:"json" help:"Print JSON"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Runs int `default:"5" help:"Number of recent crawl runs to show"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `arg:"" name:"dir" type:"path" help:"Output directory (replaced on success)"`
}
