package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var (
	_ dbxdocs.Embedder         = (*Embedder)(nil)
	_ dbxdocs.EmbeddingService = (*EmbeddingService)(nil)
	_ dbxdocs.Indexer          = (*Indexer)(nil)
)

// Embedder is a mock implementation of dbxdocs.Embedder.
type Embedder struct {
	EmbedDocumentFn func(ctx context.Context, title, text string) ([]float32, error)
	EmbedQueryFn    func(ctx context.Context, query string) ([]float32, error)
	ModelFn         func() string
}

func (e *Embedder) EmbedDocument(ctx context.Context, title, text string) ([]float32, error) {
	return e.EmbedDocumentFn(ctx, title, text)
}

func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, query)
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}

// EmbeddingService is a mock implementation of dbxdocs.EmbeddingService.
type EmbeddingService struct {
	UpsertEmbeddingFn     func(ctx context.Context, e *dbxdocs.Embedding) error
	FindEmbeddingByPathFn func(ctx context.Context, path string) (*dbxdocs.Embedding, error)
	SearchEmbeddingsFn    func(ctx context.Context, vector []float32, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error)
	DeleteEmbeddingFn     func(ctx context.Context, path string) error
	FindEmbeddingPathsFn  func(ctx context.Context, model string) ([]string, error)
	CountEmbeddingsFn     func(ctx context.Context) (int, error)
}

func (s *EmbeddingService) UpsertEmbedding(ctx context.Context, e *dbxdocs.Embedding) error {
	return s.UpsertEmbeddingFn(ctx, e)
}

func (s *EmbeddingService) FindEmbeddingByPath(ctx context.Context, path string) (*dbxdocs.Embedding, error) {
	return s.FindEmbeddingByPathFn(ctx, path)
}

func (s *EmbeddingService) SearchEmbeddings(ctx context.Context, vector []float32, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error) {
	return s.SearchEmbeddingsFn(ctx, vector, opts)
}

func (s *EmbeddingService) DeleteEmbedding(ctx context.Context, path string) error {
	return s.DeleteEmbeddingFn(ctx, path)
}

func (s *EmbeddingService) FindEmbeddingPaths(ctx context.Context, model string) ([]string, error) {
	return s.FindEmbeddingPathsFn(ctx, model)
}

func (s *EmbeddingService) CountEmbeddings(ctx context.Context) (int, error) {
	return s.CountEmbeddingsFn(ctx)
}

// Indexer is a mock implementation of dbxdocs.Indexer.
type Indexer struct {
	IndexFn   func(ctx context.Context, doc *dbxdocs.Document) error
	SearchFn  func(ctx context.Context, query string, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error)
	SimilarFn func(ctx context.Context, path string, limit int) ([]*dbxdocs.SearchResult, error)
	RemoveFn  func(ctx context.Context, path string) error
	PathsFn   func(ctx context.Context) ([]string, error)
}

func (i *Indexer) Index(ctx context.Context, doc *dbxdocs.Document) error {
	return i.IndexFn(ctx, doc)
}

func (i *Indexer) Search(ctx context.Context, query string, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error) {
	return i.SearchFn(ctx, query, opts)
}

func (i *Indexer) Similar(ctx context.Context, path string, limit int) ([]*dbxdocs.SearchResult, error) {
	return i.SimilarFn(ctx, path, limit)
}

func (i *Indexer) Remove(ctx context.Context, path string) error {
	return i.RemoveFn(ctx, path)
}

func (i *Indexer) Paths(ctx context.Context) ([]string, error) {
	return i.PathsFn(ctx)
}
