package dbxdocs

import (
	"context"
	"time"
)

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	// EmbedDocument embeds text that will be stored and searched against.
	EmbedDocument(ctx context.Context, title, text string) ([]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Model identifies the embedding space. Vectors from different models
	// are never compared.
	Model() string
}

// Embedding is the vector index entry for one document path.
type Embedding struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Model       string    `json:"model"`
	Vector      []float32 `json:"-"`
	ContentHash string    `json:"contentHash"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// EmbeddingService persists embeddings and answers similarity queries.
type EmbeddingService interface {
	// UpsertEmbedding stores e, replacing any entry at e.Path.
	UpsertEmbedding(ctx context.Context, e *Embedding) error

	// FindEmbeddingByPath returns the entry at path.
	// Returns ENOTFOUND if there is none.
	FindEmbeddingByPath(ctx context.Context, path string) (*Embedding, error)

	// SearchEmbeddings ranks stored entries by cosine similarity to vector,
	// highest first. Filters are applied before truncation.
	SearchEmbeddings(ctx context.Context, vector []float32, opts SearchOptions) ([]*SearchResult, error)

	// DeleteEmbedding removes the entry at path. Missing entries are not
	// an error.
	DeleteEmbedding(ctx context.Context, path string) error

	// FindEmbeddingPaths returns the paths with an entry for model, or for
	// any model when model is empty.
	FindEmbeddingPaths(ctx context.Context, model string) ([]string, error)

	// CountEmbeddings returns the number of stored entries.
	CountEmbeddings(ctx context.Context) (int, error)
}

// DefaultSearchLimit is used when SearchOptions.Limit is zero.
const DefaultSearchLimit = 10

// SearchOptions restricts a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Category, when set, restricts results to one category.
	Category string

	// Model, when set, restricts results to entries embedded with it.
	Model string

	// Exclude lists paths that must not appear in the results.
	Exclude []string
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Path        string  `json:"path"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Score       float64 `json:"score"`
}

// Indexer keeps the vector index in step with stored documents.
//
// Embedder failures are reported as EEMBEDDING and leave the previous entry
// in place. Store failures are reported as EUNAVAILABLE.
type Indexer interface {
	// Index embeds doc and replaces any previous entry at doc.Path.
	// Documents with empty content are removed from the index instead.
	Index(ctx context.Context, doc *Document) error

	// Search returns the documents most similar to query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]*SearchResult, error)

	// Similar returns the documents nearest to the one at path, excluding it.
	Similar(ctx context.Context, path string, limit int) ([]*SearchResult, error)

	// Remove deletes the entry at path.
	Remove(ctx context.Context, path string) error

	// Paths returns every path indexed with the current embedding model.
	Paths(ctx context.Context) ([]string, error)
}
