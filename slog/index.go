package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dbxdocs"
)

var (
	_ dbxdocs.Indexer  = (*LoggingIndexer)(nil)
	_ dbxdocs.Embedder = (*LoggingEmbedder)(nil)
)

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   dbxdocs.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next dbxdocs.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// Index logs each indexed document.
func (i *LoggingIndexer) Index(ctx context.Context, doc *dbxdocs.Document) (err error) {
	defer func(begin time.Time) {
		i.logger.Debug("index",
			"path", doc.Path,
			"hash", doc.ContentHash,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Index(ctx, doc)
}

// Search logs the query and hit count.
func (i *LoggingIndexer) Search(ctx context.Context, query string, opts dbxdocs.SearchOptions) (results []*dbxdocs.SearchResult, err error) {
	defer func(begin time.Time) {
		i.logger.Info("search",
			"query", query,
			"category", opts.Category,
			"limit", opts.Limit,
			"hits", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Search(ctx, query, opts)
}

// Similar logs the nearest-neighbour lookup.
func (i *LoggingIndexer) Similar(ctx context.Context, path string, limit int) (results []*dbxdocs.SearchResult, err error) {
	defer func(begin time.Time) {
		i.logger.Debug("similar",
			"path", path,
			"hits", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Similar(ctx, path, limit)
}

// Remove logs removals from the index.
func (i *LoggingIndexer) Remove(ctx context.Context, path string) (err error) {
	defer func() {
		i.logger.Info("unindex", "path", path, "err", err)
	}()
	return i.next.Remove(ctx, path)
}

// Paths delegates to the wrapped indexer.
func (i *LoggingIndexer) Paths(ctx context.Context) ([]string, error) {
	return i.next.Paths(ctx)
}

// LoggingEmbedder wraps an Embedder with logging. Request text is never
// logged, only its size.
type LoggingEmbedder struct {
	next   dbxdocs.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next dbxdocs.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

func (e *LoggingEmbedder) EmbedDocument(ctx context.Context, title, text string) (v []float32, err error) {
	defer e.log("embed document", len(text), time.Now(), &err)
	return e.next.EmbedDocument(ctx, title, text)
}

func (e *LoggingEmbedder) EmbedQuery(ctx context.Context, query string) (v []float32, err error) {
	defer e.log("embed query", len(query), time.Now(), &err)
	return e.next.EmbedQuery(ctx, query)
}

func (e *LoggingEmbedder) Model() string {
	return e.next.Model()
}

func (e *LoggingEmbedder) log(msg string, chars int, begin time.Time, err *error) {
	e.logger.Debug(msg,
		"model", e.next.Model(),
		"chars", chars,
		"duration", time.Since(begin),
		"err", *err,
	)
}
