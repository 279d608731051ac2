package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// Compile-time interface verification.
var _ dbxdocs.DocumentService = (*DocumentService)(nil)

// DocumentService implements dbxdocs.DocumentService using SQLite.
type DocumentService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db, Now: time.Now}
}

const documentColumns = `path, url, title, content, breadcrumb, related_paths, category, subcategory, content_hash, indexed_hash, fetched_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*dbxdocs.Document, error) {
	var doc dbxdocs.Document
	var breadcrumb, related, fetchedAt string

	if err := row.Scan(&doc.Path, &doc.URL, &doc.Title, &doc.Content, &breadcrumb, &related,
		&doc.Category, &doc.Subcategory, &doc.ContentHash, &doc.IndexedHash, &fetchedAt); err != nil {
		return nil, err
	}

	var err error
	if doc.Breadcrumb, err = decodeStrings(breadcrumb, "breadcrumb"); err != nil {
		return nil, err
	}
	if doc.RelatedPaths, err = decodeStrings(related, "related_paths"); err != nil {
		return nil, err
	}
	if doc.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDocumentByPath retrieves a document by path.
func (s *DocumentService) FindDocumentByPath(ctx context.Context, path string) (*dbxdocs.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dbxdocs.Errorf(dbxdocs.ENOTFOUND, "document not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindDocuments retrieves documents matching the filter.
func (s *DocumentService) FindDocuments(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents")
	appendDocumentWhere(&query, &args, filter)

	switch filter.SortBy {
	case dbxdocs.SortByCategory:
		query.WriteString(" ORDER BY category ASC, title ASC, path ASC")
	case dbxdocs.SortByFetchedAt:
		query.WriteString(" ORDER BY fetched_at DESC, path ASC")
	default:
		query.WriteString(" ORDER BY path ASC")
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*dbxdocs.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// CountDocuments returns the number of documents matching the filter.
func (s *DocumentService) CountDocuments(ctx context.Context, filter dbxdocs.DocumentFilter) (int, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT COUNT(*) FROM documents")
	appendDocumentWhere(&query, &args, filter)

	var n int
	if err := s.db.QueryRowContext(ctx, query.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func appendDocumentWhere(query *strings.Builder, args *[]any, filter dbxdocs.DocumentFilter) {
	query.WriteString(" WHERE 1=1")
	if filter.Path != nil {
		query.WriteString(" AND path = ?")
		*args = append(*args, *filter.Path)
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		*args = append(*args, *filter.Category)
	}
	if filter.Unindexed {
		query.WriteString(" AND indexed_hash != content_hash")
	}
}

// FindCategories returns every distinct category, sorted.
func (s *DocumentService) FindCategories(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SELECT DISTINCT category FROM documents ORDER BY category ASC")
}

// FindDocumentPaths returns every stored path, sorted.
func (s *DocumentService) FindDocumentPaths(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SELECT path FROM documents ORDER BY path ASC")
}

func (s *DocumentService) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PutDocument inserts or replaces the document at doc.Path.
//
// The write is a single statement, so a reader sees either the previous
// record or the new one, and ContentHash always matches Content. On return
// doc carries the stored ContentHash, IndexedHash and FetchedAt.
func (s *DocumentService) PutDocument(ctx context.Context, doc *dbxdocs.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	breadcrumb, err := encodeStrings(doc.Breadcrumb)
	if err != nil {
		return err
	}
	related, err := encodeStrings(doc.RelatedPaths)
	if err != nil {
		return err
	}

	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = s.Now()
	}
	doc.FetchedAt = doc.FetchedAt.UTC().Truncate(time.Second)
	doc.ContentHash = hashContent(doc.Content)

	return s.db.QueryRowContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?)
		ON CONFLICT(path) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			content = excluded.content,
			breadcrumb = excluded.breadcrumb,
			related_paths = excluded.related_paths,
			category = excluded.category,
			subcategory = excluded.subcategory,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
		RETURNING indexed_hash
	`, doc.Path, doc.URL, doc.Title, doc.Content, breadcrumb, related,
		doc.Category, doc.Subcategory, doc.ContentHash, formatTime(doc.FetchedAt),
	).Scan(&doc.IndexedHash)
}

// MarkIndexed records that content with hash was embedded for path.
func (s *DocumentService) MarkIndexed(ctx context.Context, path, hash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE documents SET indexed_hash = ? WHERE path = ? AND content_hash = ?",
		hash, path, hash)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Content changed since it was embedded, or the document is gone.
	if _, err := s.FindDocumentByPath(ctx, path); err != nil {
		return err
	}
	return nil
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, path string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dbxdocs.Errorf(dbxdocs.ENOTFOUND, "document not found: %s", path)
	}

	return nil
}
