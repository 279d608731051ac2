// Package index keeps the vector index in step with stored documents.
package index

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/dbxdocs"
)

// DefaultMaxChars bounds the document body included in the embedding text.
const DefaultMaxChars = 8000

// Compile-time interface verification.
var _ dbxdocs.Indexer = (*Indexer)(nil)

// Indexer implements dbxdocs.Indexer on top of an Embedder and an
// EmbeddingService. One vector is kept per document path.
type Indexer struct {
	Embedder dbxdocs.Embedder
	Store    dbxdocs.EmbeddingService

	// MaxChars truncates the body before embedding. Zero means
	// DefaultMaxChars.
	MaxChars int

	Now func() time.Time
}

// NewIndexer creates a new Indexer.
func NewIndexer(embedder dbxdocs.Embedder, store dbxdocs.EmbeddingService) *Indexer {
	return &Indexer{Embedder: embedder, Store: store, MaxChars: DefaultMaxChars, Now: time.Now}
}

// Index embeds doc and replaces the entry at doc.Path.
func (i *Indexer) Index(ctx context.Context, doc *dbxdocs.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return i.Remove(ctx, doc.Path)
	}

	vector, err := i.Embedder.EmbedDocument(ctx, doc.Title, EmbeddingText(doc, i.maxChars()))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return embeddingErr(doc.Path, err)
	}
	if len(vector) == 0 {
		return dbxdocs.Errorf(dbxdocs.EEMBEDDING, "embed %s: empty vector", doc.Path)
	}

	e := &dbxdocs.Embedding{
		Path:        doc.Path,
		Title:       doc.Title,
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
		Model:       i.Embedder.Model(),
		Vector:      vector,
		ContentHash: doc.ContentHash,
		IndexedAt:   i.now(),
	}
	if err := i.Store.UpsertEmbedding(ctx, e); err != nil {
		return storeErr(ctx, "upsert "+doc.Path, err)
	}
	return nil
}

// Search embeds query and ranks stored entries of the current model.
func (i *Indexer) Search(ctx context.Context, query string, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "search query required")
	}

	vector, err := i.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, embeddingErr("query", err)
	}

	opts.Model = i.Embedder.Model()
	results, err := i.Store.SearchEmbeddings(ctx, vector, opts)
	if err != nil {
		return nil, storeErr(ctx, "search", err)
	}
	return results, nil
}

// Similar returns the nearest neighbours of the entry at path. A path
// without an entry for the current model has no neighbours.
func (i *Indexer) Similar(ctx context.Context, path string, limit int) ([]*dbxdocs.SearchResult, error) {
	e, err := i.Store.FindEmbeddingByPath(ctx, path)
	if dbxdocs.ErrorCode(err) == dbxdocs.ENOTFOUND {
		return nil, nil
	} else if err != nil {
		return nil, storeErr(ctx, "find "+path, err)
	}
	if e.Model != i.Embedder.Model() {
		return nil, nil
	}

	results, err := i.Store.SearchEmbeddings(ctx, e.Vector, dbxdocs.SearchOptions{
		Limit:   limit,
		Model:   e.Model,
		Exclude: []string{path},
	})
	if err != nil {
		return nil, storeErr(ctx, "similar "+path, err)
	}
	return results, nil
}

// Remove deletes the entry at path. Missing entries are not an error.
func (i *Indexer) Remove(ctx context.Context, path string) error {
	if err := i.Store.DeleteEmbedding(ctx, path); err != nil {
		return storeErr(ctx, "delete "+path, err)
	}
	return nil
}

// Paths returns every path indexed with the current model.
func (i *Indexer) Paths(ctx context.Context) ([]string, error) {
	paths, err := i.Store.FindEmbeddingPaths(ctx, i.Embedder.Model())
	if err != nil {
		return nil, storeErr(ctx, "list paths", err)
	}
	return paths, nil
}

func (i *Indexer) maxChars() int {
	if i.MaxChars > 0 {
		return i.MaxChars
	}
	return DefaultMaxChars
}

func (i *Indexer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// EmbeddingText builds the text embedded for doc: title, breadcrumb,
// heading outline, then the body truncated to maxChars.
func EmbeddingText(doc *dbxdocs.Document, maxChars int) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteString("\n")
	if len(doc.Breadcrumb) > 0 {
		fmt.Fprintf(&b, "Breadcrumb: %s\n", strings.Join(doc.Breadcrumb, " > "))
	}
	if outline := dbxdocs.Outline(doc.Content); outline != "" {
		b.WriteString("Sections:\n")
		b.WriteString(outline)
	}
	b.WriteString("\n")
	b.WriteString(truncate(doc.Content, maxChars))
	return b.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func embeddingErr(what string, err error) error {
	if dbxdocs.ErrorCode(err) == dbxdocs.EEMBEDDING {
		return err
	}
	return dbxdocs.Errorf(dbxdocs.EEMBEDDING, "embed %s: %v", what, err)
}

func storeErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	switch dbxdocs.ErrorCode(err) {
	case dbxdocs.EINVALID, dbxdocs.EUNAVAILABLE:
		return err
	}
	return dbxdocs.Errorf(dbxdocs.EUNAVAILABLE, "vector store %s: %v", op, err)
}
