package dbxdocs

import (
	"context"
	"strings"
	"time"
)

// Document is the stored record for one documentation page. Path is the
// primary key.
type Document struct {
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Breadcrumb   []string  `json:"breadcrumb"`
	RelatedPaths []string  `json:"relatedPaths"`
	Category     string    `json:"category"`
	Subcategory  string    `json:"subcategory,omitempty"`
	ContentHash  string    `json:"contentHash"`
	FetchedAt    time.Time `json:"fetchedAt"`

	// IndexedHash is the ContentHash that was last embedded successfully.
	// A mismatch marks a document that is stored but not yet indexed.
	IndexedHash string `json:"indexedHash,omitempty"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Path == "" {
		return Errorf(EINVALID, "document path required")
	}
	if !strings.HasPrefix(d.Path, "/") {
		return Errorf(EINVALID, "document path must start with /: %q", d.Path)
	}
	return nil
}

// Indexed reports whether the current content has been embedded.
func (d *Document) Indexed() bool {
	return d.IndexedHash != "" && d.IndexedHash == d.ContentHash
}

// DocumentService represents a service for managing stored documents.
type DocumentService interface {
	// FindDocumentByPath retrieves a document by path.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByPath(ctx context.Context, path string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// CountDocuments returns the number of documents matching the filter,
	// ignoring Limit and Offset.
	CountDocuments(ctx context.Context, filter DocumentFilter) (int, error)

	// FindCategories returns every distinct category, sorted.
	FindCategories(ctx context.Context) ([]string, error)

	// FindDocumentPaths returns every stored path, sorted.
	FindDocumentPaths(ctx context.Context) ([]string, error)

	// PutDocument inserts or replaces the document at doc.Path in a single
	// atomic write. ContentHash is recomputed from Content. IndexedHash of
	// an existing record is preserved.
	PutDocument(ctx context.Context, doc *Document) error

	// MarkIndexed records that content with the given hash was embedded.
	// It is a no-op when the stored content has since changed.
	MarkIndexed(ctx context.Context, path, hash string) error

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, path string) error
}

// SortOrder represents the sort order for document queries.
type SortOrder string

// SortOrder constants for DocumentFilter.
const (
	SortByCategory  SortOrder = "category"
	SortByPath      SortOrder = "path"
	SortByFetchedAt SortOrder = "fetched_at"
)

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Path     *string `json:"path"`
	Category *string `json:"category"`

	// Unindexed restricts results to documents whose current content has
	// not been embedded.
	Unindexed bool `json:"unindexed"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	SortBy SortOrder `json:"sortBy"`
}
